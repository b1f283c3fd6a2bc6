package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teayouth/portal/core/achievement"
	"github.com/teayouth/portal/core/user"
)

func Test_achievementApi_shared(t *testing.T) {
	app := newTestApp(t)

	ach, err := app.achSvc.Create(context.Background(), achievement.NewAchievement{
		SchoolID: "sch-1",
		Title:    "Regional science fair winners",
	})
	assert.NoError(t, err)

	t.Run("unpublished achievement looks missing", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/achievements/shared/"+ach.ShareToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("published achievement needs no credential", func(t *testing.T) {
		published := true
		_, err := app.achSvc.Update(context.Background(), ach.ID, achievement.UpdateAchievement{
			Title:       ach.Title,
			IsPublished: &published,
		})
		assert.NoError(t, err)

		req, rec := newRequest(http.MethodGet, "/v1/achievements/shared/"+ach.ShareToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var shared achievement.Achievement
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shared))
		assert.Equal(t, ach.ID, shared.ID)
	})

	t.Run("unknown token", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/achievements/shared/nope")
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_achievementApi_schoolScoping(t *testing.T) {
	app := newTestApp(t)

	teacher := app.createUser(t, "Teacher", "teacher@demo.com", "password123", "sch-1", []string{user.RoleTeacher})
	otherTeacher := app.createUser(t, "Other", "other@demo.com", "password123", "sch-2", []string{user.RoleTeacher})
	admin := app.createUser(t, "Admin", "admin@demo.com", "password123", "sch-1", user.AdminRoles)

	teacherToken := app.getToken(t, teacher)
	otherToken := app.getToken(t, otherTeacher)
	adminToken := app.getToken(t, admin)

	t.Run("create requires a credential", func(t *testing.T) {
		body := marshallObj(t, achievement.NewAchievement{Title: "Chess tournament"})
		req, rec := newRequest(http.MethodPost, "/v1/achievements", body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("teachers record for their own school only", func(t *testing.T) {
		// the foreign school ID is ignored for non-admins
		body := marshallObj(t, achievement.NewAchievement{SchoolID: "sch-2", Title: "Chess tournament"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/achievements", teacherToken, body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var ach achievement.Achievement
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ach))
		assert.Equal(t, "sch-1", ach.SchoolID)
		assert.NotEmpty(t, ach.ShareToken)
		assert.False(t, ach.IsPublished)
	})

	t.Run("listing is scoped to the caller's school", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/achievements", teacherToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var achs []achievement.Achievement
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &achs))
		assert.Len(t, achs, 1)

		req, rec = newAuthRequest(http.MethodGet, "/v1/achievements", otherToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		achs = nil
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &achs))
		assert.Empty(t, achs)

		// admins may inspect any school
		req, rec = newAuthRequest(http.MethodGet, "/v1/achievements?school_id=sch-1", adminToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		achs = nil
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &achs))
		assert.Len(t, achs, 1)
	})

	t.Run("foreign achievements look missing", func(t *testing.T) {
		ach, err := app.achSvc.Create(context.Background(), achievement.NewAchievement{
			SchoolID: "sch-2",
			Title:    "Debate club finals",
		})
		assert.NoError(t, err)

		req, rec := newAuthRequest(http.MethodGet, "/v1/achievements/"+ach.ID, teacherToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/achievements/"+ach.ID, otherToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/achievements/"+ach.ID, adminToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("delete checks ownership per id", func(t *testing.T) {
		ach, err := app.achSvc.Create(context.Background(), achievement.NewAchievement{
			SchoolID: "sch-2",
			Title:    "Art exhibition",
		})
		assert.NoError(t, err)

		req, rec := newAuthRequest(http.MethodDelete, "/v1/achievements?id="+ach.ID, teacherToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		req, rec = newAuthRequest(http.MethodDelete, "/v1/achievements?id="+ach.ID, otherToken)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		_, err = app.achSvc.GetByID(context.Background(), ach.ID)
		assert.Equal(t, achievement.ErrNotFound, err)
	})
}
