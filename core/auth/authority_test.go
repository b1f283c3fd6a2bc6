package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/teayouth/portal/core"
)

func newTestConfig(secret, prevSecret string) *core.Config {
	return &core.Config{
		AppName:           "TeaYouth",
		SecretKey:         secret,
		PreviousSecretKey: prevSecret,
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

func TestAuthority_IssueVerify(t *testing.T) {
	authority := NewAuthority(newTestConfig("secret", ""))

	p := Principal{
		ID:       "usr-1",
		Email:    "teacher@demo.com",
		SchoolID: "sch-1",
		Roles:    []string{"teacher:"},
	}

	token, err := authority.Issue(p)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// every decode before expiry reproduces the principal exactly
	for i := 0; i < 3; i++ {
		got, err := authority.Verify(token)
		assert.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestAuthority_IssueIncompletePrincipal(t *testing.T) {
	authority := NewAuthority(newTestConfig("secret", ""))

	tests := []struct {
		name string
		p    Principal
	}{
		{"no id", Principal{Email: "t@t.cd", SchoolID: "sch-1", Roles: []string{"teacher:"}}},
		{"no school", Principal{ID: "usr-1", Email: "t@t.cd", Roles: []string{"teacher:"}}},
		{"no roles", Principal{ID: "usr-1", Email: "t@t.cd", SchoolID: "sch-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authority.Issue(tt.p)
			assert.Error(t, err)
		})
	}
}

func TestAuthority_VerifyFailures(t *testing.T) {
	authority := NewAuthority(newTestConfig("secret", ""))
	foreign := NewAuthority(newTestConfig("other-secret", ""))

	p := Principal{ID: "usr-1", Email: "t@t.cd", SchoolID: "sch-1", Roles: []string{"teacher:"}}
	token, err := authority.Issue(p)
	assert.NoError(t, err)

	foreignToken, err := foreign.Issue(p)
	assert.NoError(t, err)

	// tamper with the payload
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"tampered payload", tampered},
		{"foreign signing key", foreignToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authority.Verify(tt.token)
			assert.Equal(t, ErrInvalidCredential, err)
		})
	}
}

func TestAuthority_Expiry(t *testing.T) {
	authority := NewAuthority(newTestConfig("secret", ""))
	p := Principal{ID: "usr-1", Email: "t@t.cd", SchoolID: "sch-1", Roles: []string{"teacher:"}}

	// issue in the past so the credential is already expired
	NowFunc = func() time.Time { return time.Now().Add(-time.Hour) }
	defer func() { NowFunc = time.Now }()

	token, err := authority.Issue(p)
	assert.NoError(t, err)

	_, err = authority.Verify(token)
	assert.Equal(t, ErrInvalidCredential, err)
}

func TestAuthority_KeyRotation(t *testing.T) {
	p := Principal{ID: "usr-1", Email: "t@t.cd", SchoolID: "sch-1", Roles: []string{"teacher:"}}

	oldAuthority := NewAuthority(newTestConfig("old-secret", ""))
	oldToken, err := oldAuthority.Issue(p)
	assert.NoError(t, err)

	// during the rotation window the previous secret keeps verifying
	rotated := NewAuthority(newTestConfig("new-secret", "old-secret"))
	got, err := rotated.Verify(oldToken)
	assert.NoError(t, err)
	assert.Equal(t, p, got)

	newToken, err := rotated.Issue(p)
	assert.NoError(t, err)
	_, err = rotated.Verify(newToken)
	assert.NoError(t, err)

	// once the previous secret is dropped, its credentials stop verifying
	final := NewAuthority(newTestConfig("new-secret", ""))
	_, err = final.Verify(oldToken)
	assert.Equal(t, ErrInvalidCredential, err)
	_, err = final.Verify(newToken)
	assert.NoError(t, err)
}

func TestAuthority_RefreshExpired(t *testing.T) {
	authority := NewAuthority(newTestConfig("secret", ""))
	p := Principal{ID: "usr-1", Email: "t@t.cd", SchoolID: "sch-1", Roles: []string{"teacher:"}}

	claims := authority.NewClaims(p)
	assert.False(t, authority.RefreshExpired(claims))

	claims.OrigIssuedAt = time.Now().Add(-5 * time.Hour).Unix()
	assert.True(t, authority.RefreshExpired(claims))
}
