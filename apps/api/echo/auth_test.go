package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teayouth/portal/core/user"
)

func Test_authApi_login(t *testing.T) {
	app := newTestApp(t)
	teacher := app.createUser(t, "Demo Teacher", "teacher@demo.com", "password123", "sch-1", []string{user.RoleTeacher})

	t.Run("valid credentials", func(t *testing.T) {
		body := marshallObj(t, LoginRequest{Email: "teacher@demo.com", Password: "password123"})
		req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
		app.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, teacher.ID, resp.Principal.ID)
		assert.Equal(t, "sch-1", resp.Principal.SchoolID)
		assert.Equal(t, []string{user.RoleTeacher}, resp.Principal.Roles)

		// the credential decodes back to the same principal
		principal, err := app.authSvc.Authority().Verify(resp.Token)
		assert.NoError(t, err)
		assert.Equal(t, resp.Principal, principal)

		// the credential also travels as an httpOnly cookie
		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == tokenCookieName {
				cookie = c
			}
		}
		if assert.NotNil(t, cookie) {
			assert.Equal(t, resp.Token, cookie.Value)
			assert.True(t, cookie.HttpOnly)
			assert.Equal(t, "/", cookie.Path)
			assert.Equal(t, int(app.conf.Server.JWTExpirationDelta.Seconds()), cookie.MaxAge)
		}
	})

	// all credential failures collapse into the same response
	failures := []httpTest{
		{name: "unknown email", body: marshallObj(t, LoginRequest{Email: "nobody@demo.com", Password: "password123"})},
		{name: "wrong password", body: marshallObj(t, LoginRequest{Email: "teacher@demo.com", Password: "nope"})},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/login", tt.body)
			app.server.ServeHTTP(rec, req)

			tt.wantCode = http.StatusBadRequest
			tt.wantData = marshallObj(t, httpErr{Error: "authentication failed"})
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("inactive account", func(t *testing.T) {
		inactive := app.createUser(t, "Gone", "gone@demo.com", "password123", "sch-1", []string{user.RoleTeacher})
		active := false
		_, err := app.usrSvc.Update(context.Background(), inactive.ID, user.UpdateUser{IsActive: &active})
		assert.NoError(t, err)

		body := marshallObj(t, LoginRequest{Email: "gone@demo.com", Password: "password123"})
		req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/login", marshallObj(t, LoginRequest{}))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_authApi_me(t *testing.T) {
	app := newTestApp(t)
	teacher := app.createUser(t, "Demo Teacher", "teacher@demo.com", "password123", "sch-1", []string{user.RoleTeacher})
	token := app.getToken(t, teacher)

	t.Run("with bearer token", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/auth/me", token)
		app.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var usr user.User
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.Equal(t, teacher.ID, usr.ID)
		assert.Equal(t, teacher.Email, usr.Email)
	})

	t.Run("with cookie", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/auth/me")
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no credential", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/auth/me")
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage credential", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/auth/me", "garbage")
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func Test_authApi_refreshToken(t *testing.T) {
	app := newTestApp(t)
	teacher := app.createUser(t, "Demo Teacher", "teacher@demo.com", "password123", "sch-1", []string{user.RoleTeacher})
	token := app.getToken(t, teacher)

	t.Run("refresh", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/auth/token-refresh", token)
		app.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		_, err := app.authSvc.Authority().Verify(resp.Token)
		assert.NoError(t, err)
	})

	t.Run("no credential", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/auth/token-refresh")
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func Test_authApi_logout(t *testing.T) {
	app := newTestApp(t)

	req, rec := newRequest(http.MethodPost, "/v1/auth/logout")
	app.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == tokenCookieName {
			cookie = c
		}
	}
	if assert.NotNil(t, cookie) {
		assert.Empty(t, cookie.Value)
		assert.True(t, cookie.MaxAge < 0)
	}
}
