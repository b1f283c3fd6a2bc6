package auth

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/teayouth/portal/core"
)

type fakeFinder struct {
	accounts map[string]Account
	ioErr    error
}

var _ AccountFinder = (*fakeFinder)(nil)

func (f *fakeFinder) FindAccountByIdentifier(ctx context.Context, identifier string) (Account, error) {
	if f.ioErr != nil {
		return Account{}, f.ioErr
	}
	if acct, ok := f.accounts[identifier]; ok {
		return acct, nil
	}
	return Account{}, ErrAccountNotFound
}

func (f *fakeFinder) SetAccountLastLogin(ctx context.Context, id string) error { return nil }

func newTestAccount(t *testing.T, email, pwd string, active bool) Account {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	return Account{
		ID:           "usr-" + email,
		Name:         "Demo Teacher",
		Email:        email,
		SchoolID:     "sch-1",
		Roles:        []string{"teacher:"},
		IsActive:     active,
		PasswordHash: hash,
	}
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()

	finder := &fakeFinder{accounts: map[string]Account{
		"teacher@demo.com":  newTestAccount(t, "teacher@demo.com", "password123", true),
		"inactive@demo.com": newTestAccount(t, "inactive@demo.com", "password123", false),
	}}
	svc := NewService(NewAuthority(newTestConfig("secret", "")), finder)

	t.Run("valid credentials", func(t *testing.T) {
		token, principal, err := svc.Authenticate(ctx, "teacher@demo.com", "password123")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "teacher@demo.com", principal.Email)
		assert.Equal(t, "sch-1", principal.SchoolID)
		assert.Equal(t, []string{"teacher:"}, principal.Roles)

		// the issued credential decodes back to the same principal
		got, err := svc.Authority().Verify(token)
		assert.NoError(t, err)
		assert.Equal(t, principal, got)
	})

	t.Run("identifier is case-insensitive", func(t *testing.T) {
		_, _, err := svc.Authenticate(ctx, "  Teacher@Demo.com ", "password123")
		assert.NoError(t, err)
	})

	// unknown account, wrong password and inactive account are
	// indistinguishable to the caller
	failures := []struct {
		name       string
		identifier string
		password   string
	}{
		{"unknown identifier", "nobody@demo.com", "password123"},
		{"wrong password", "teacher@demo.com", "wrong"},
		{"empty password", "teacher@demo.com", ""},
		{"inactive account", "inactive@demo.com", "password123"},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			token, _, err := svc.Authenticate(ctx, tt.identifier, tt.password)
			assert.Equal(t, ErrInvalidCredential, err)
			assert.Empty(t, token)
		})
	}

	t.Run("store failure is a dependency error", func(t *testing.T) {
		broken := NewService(svc.Authority(), &fakeFinder{ioErr: errors.New("connection refused")})
		_, _, err := broken.Authenticate(ctx, "teacher@demo.com", "password123")
		assert.True(t, core.IsDependencyFailure(err))
		assert.NotEqual(t, ErrInvalidCredential, err)
	})
}

func TestService_Refresh(t *testing.T) {
	ctx := context.Background()

	finder := &fakeFinder{accounts: map[string]Account{
		"teacher@demo.com": newTestAccount(t, "teacher@demo.com", "password123", true),
	}}
	svc := NewService(NewAuthority(newTestConfig("secret", "")), finder)

	token, _, err := svc.Authenticate(ctx, "teacher@demo.com", "password123")
	assert.NoError(t, err)

	t.Run("within refresh window", func(t *testing.T) {
		newToken, err := svc.Refresh(ctx, token)
		assert.NoError(t, err)
		_, err = svc.Authority().Verify(newToken)
		assert.NoError(t, err)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "garbage")
		assert.Equal(t, ErrInvalidCredential, err)
	})

	t.Run("refresh window passed", func(t *testing.T) {
		NowFunc = func() time.Time { return time.Now().Add(-5 * time.Hour) }
		staleToken, _, err := svc.Authenticate(ctx, "teacher@demo.com", "password123")
		NowFunc = time.Now
		assert.NoError(t, err)

		_, err = svc.Refresh(ctx, staleToken)
		assert.Equal(t, ErrInvalidCredential, err)
	})
}
