package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teayouth/portal/core/resource"
	"github.com/teayouth/portal/core/user"
)

func (a *testApp) createResource(t *testing.T, title, fileKey, accessLevel, schoolID string) resource.Resource {
	t.Helper()
	res, err := a.resSvc.Create(context.Background(), resource.NewResource{
		Title:       title,
		FileKey:     fileKey,
		AccessLevel: accessLevel,
		SchoolID:    schoolID,
	})
	if err != nil {
		t.Fatalf("creating resource: %v", err)
	}
	return res
}

func Test_resourceApi_deliverURL(t *testing.T) {
	app := newTestApp(t)

	teacher := app.createUser(t, "Teacher", "teacher@demo.com", "password123", "sch-1", []string{user.RoleTeacher})
	otherTeacher := app.createUser(t, "Other", "other@demo.com", "password123", "sch-2", []string{user.RoleTeacher})
	admin := app.createUser(t, "Admin", "admin@demo.com", "password123", "sch-1", user.AdminRoles)

	teacherToken := app.getToken(t, teacher)
	otherToken := app.getToken(t, otherTeacher)
	adminToken := app.getToken(t, admin)

	public := app.createResource(t, "Cover", "covers/cover.png", "PUBLIC", "")
	authed := app.createResource(t, "Lesson", "docs/lesson.pdf", "AUTHENTICATED", "")
	schoolOnly := app.createResource(t, "Plan", "docs/plan.pdf", "SCHOOL_ONLY", "sch-1")
	premium := app.createResource(t, "Report", "docs/report.pdf", "PREMIUM", "")

	signer := resource.NewSigner(app.conf)

	deliver := func(t *testing.T, id, token string) (int, string) {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/v1/resources/"+id+"/url", token)
		app.server.ServeHTTP(rec, req)
		var resp ResourceURLResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		return rec.Code, resp.URL
	}

	t.Run("public needs no credential and gets the stable URL", func(t *testing.T) {
		code, url := deliver(t, public.ID, "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "https://oss.example.com/portal/covers/cover.png", url)
		assert.NotContains(t, url, "signature")

		// same URL for authenticated callers
		code, authedURL := deliver(t, public.ID, teacherToken)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, url, authedURL)
	})

	t.Run("authenticated requires any valid credential", func(t *testing.T) {
		code, _ := deliver(t, authed.ID, "")
		assert.Equal(t, http.StatusUnauthorized, code)

		code, url := deliver(t, authed.ID, teacherToken)
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, url, "expires=")
		assert.Contains(t, url, "signature=")
		assert.True(t, strings.HasPrefix(url, "https://oss.example.com/portal/docs/lesson.pdf?"))
		assert.NoError(t, signer.VerifySignedURL(url))
	})

	t.Run("school only requires a matching school scope", func(t *testing.T) {
		code, _ := deliver(t, schoolOnly.ID, "")
		assert.Equal(t, http.StatusUnauthorized, code)

		code, _ = deliver(t, schoolOnly.ID, otherToken)
		assert.Equal(t, http.StatusForbidden, code)

		code, url := deliver(t, schoolOnly.ID, teacherToken)
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, url, "signature=")
	})

	t.Run("premium requires a privileged role", func(t *testing.T) {
		code, _ := deliver(t, premium.ID, teacherToken)
		assert.Equal(t, http.StatusForbidden, code)

		code, url := deliver(t, premium.ID, adminToken)
		assert.Equal(t, http.StatusOK, code)
		assert.NoError(t, signer.VerifySignedURL(url))
	})

	t.Run("invalid credential on a protected resource is unauthenticated", func(t *testing.T) {
		code, _ := deliver(t, authed.ID, "garbage")
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("unknown resource", func(t *testing.T) {
		code, _ := deliver(t, "nope", teacherToken)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("inactive resource looks missing", func(t *testing.T) {
		res := app.createResource(t, "Old", "docs/old.pdf", "PUBLIC", "")
		active := false
		_, err := app.resSvc.Update(context.Background(), res.ID, resource.UpdateResource{IsActive: &active})
		assert.NoError(t, err)

		code, _ := deliver(t, res.ID, teacherToken)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("each grant records a view", func(t *testing.T) {
		res := app.createResource(t, "Counted", "docs/counted.pdf", "PUBLIC", "")

		for i := 0; i < 3; i++ {
			code, _ := deliver(t, res.ID, "")
			assert.Equal(t, http.StatusOK, code)
		}
		refreshed, err := app.resSvc.GetByID(context.Background(), res.ID)
		assert.NoError(t, err)
		assert.Equal(t, 3, refreshed.ViewCount)
	})

	t.Run("denied access records no view", func(t *testing.T) {
		before, err := app.resSvc.GetByID(context.Background(), premium.ID)
		assert.NoError(t, err)

		code, _ := deliver(t, premium.ID, teacherToken)
		assert.Equal(t, http.StatusForbidden, code)

		after, err := app.resSvc.GetByID(context.Background(), premium.ID)
		assert.NoError(t, err)
		assert.Equal(t, before.ViewCount, after.ViewCount)
	})
}

func Test_resourceApi_management(t *testing.T) {
	app := newTestApp(t)

	teacher := app.createUser(t, "Teacher", "teacher@demo.com", "password123", "sch-1", []string{user.RoleTeacher})
	admin := app.createUser(t, "Admin", "admin@demo.com", "password123", "sch-1", user.AdminRoles)
	teacherToken := app.getToken(t, teacher)
	adminToken := app.getToken(t, admin)

	t.Run("create requires an admin role", func(t *testing.T) {
		body := marshallObj(t, resource.NewResource{Title: "Lesson", FileKey: "docs/lesson.pdf", AccessLevel: "AUTHENTICATED"})

		req, rec := newAuthRequest(http.MethodPost, "/v1/resources", teacherToken, body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodPost, "/v1/resources", adminToken, body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("create validates the access level", func(t *testing.T) {
		body := marshallObj(t, resource.NewResource{Title: "Lesson", FileKey: "docs/lesson.pdf", AccessLevel: "SECRET"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/resources", adminToken, body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("anonymous catalog only lists active resources", func(t *testing.T) {
		res := app.createResource(t, "Hidden", "docs/hidden.pdf", "PUBLIC", "")
		active := false
		_, err := app.resSvc.Update(context.Background(), res.ID, resource.UpdateResource{IsActive: &active})
		assert.NoError(t, err)

		req, rec := newRequest(http.MethodGet, "/v1/resources")
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resources []resource.Resource
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resources))
		for _, r := range resources {
			assert.True(t, r.IsActive)
		}
	})
}
