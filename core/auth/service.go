package auth

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/teayouth/portal/core"
)

var ErrAccountNotFound = errors.New("account not found")

type (
	// Account is the stored principal record the persistence collaborator
	// resolves credentials against.
	Account struct {
		ID           string
		Name         string
		Email        string
		SchoolID     string
		Roles        []string
		IsActive     bool
		PasswordHash []byte
	}

	// AccountFinder is the persistence port the authority authenticates
	// against. FindAccountByIdentifier returns ErrAccountNotFound for an
	// unknown identifier; any other error is an I/O failure.
	AccountFinder interface {
		FindAccountByIdentifier(ctx context.Context, identifier string) (Account, error)
		SetAccountLastLogin(ctx context.Context, id string) error
	}

	Service struct {
		authority *Authority
		finder    AccountFinder
	}
)

func (a Account) Principal() Principal {
	return Principal{
		ID:       a.ID,
		Email:    a.Email,
		SchoolID: a.SchoolID,
		Roles:    a.Roles,
	}
}

func NewService(authority *Authority, finder AccountFinder) *Service {
	return &Service{authority: authority, finder: finder}
}

func (svc *Service) Authority() *Authority { return svc.authority }

// Authenticate resolves identifier/secret to a freshly issued credential.
// An unknown identifier, an inactive account and a failed password check all
// surface as the same ErrInvalidCredential.
func (svc *Service) Authenticate(ctx context.Context, identifier, secret string) (string, Principal, error) {
	acct, err := svc.finder.FindAccountByIdentifier(ctx, core.CleanString(identifier, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrAccountNotFound {
			return "", Principal{}, ErrInvalidCredential
		}
		return "", Principal{}, core.NewDependencyError("finding account", err)
	}
	if !acct.IsActive {
		return "", Principal{}, ErrInvalidCredential
	}
	if err = bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(secret)); err != nil {
		return "", Principal{}, ErrInvalidCredential
	}

	if err = svc.finder.SetAccountLastLogin(ctx, acct.ID); err != nil {
		return "", Principal{}, core.NewDependencyError("setting last login", err)
	}

	principal := acct.Principal()
	token, err := svc.authority.Issue(principal)
	return token, principal, err
}

// Refresh re-issues a credential carrying over the original issuance time,
// as long as the refresh window has not passed and the account is still
// active.
func (svc *Service) Refresh(ctx context.Context, token string) (string, error) {
	claims, err := svc.authority.VerifyClaims(token)
	if err != nil {
		return "", err
	}
	if svc.authority.RefreshExpired(claims) {
		return "", ErrInvalidCredential
	}

	acct, err := svc.finder.FindAccountByIdentifier(ctx, claims.Email)
	if err != nil {
		if errors.Cause(err) == ErrAccountNotFound {
			return "", ErrInvalidCredential
		}
		return "", core.NewDependencyError("finding account", err)
	}
	if !acct.IsActive {
		return "", ErrInvalidCredential
	}

	newClaims := svc.authority.NewClaims(acct.Principal(), claims.OrigIssuedAt)
	return svc.authority.Sign(newClaims)
}
