package user

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teayouth/portal/core"
	"github.com/teayouth/portal/core/auth"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		FilterUsers(ctx context.Context, filter *QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		SetUserLastLogin(ctx context.Context, id string, at time.Time) error
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

var _ auth.AccountFinder = (*Service)(nil) // the persistence port of the credential authority

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := svc.checkUniqueness(ctx, nu.Email); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	roles := nu.Roles
	if len(roles) == 0 {
		roles = []string{RoleTeacher}
	}
	usr := User{
		SchoolID:   nu.SchoolID,
		Name:       nu.Name,
		Email:      nu.Email,
		Phone:      null.NewString(nu.Phone, nu.Phone != ""),
		Title:      null.NewString(nu.Title, nu.Title != ""),
		Department: null.NewString(nu.Department, nu.Department != ""),
		IsActive:   true,
		Roles:      roles,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter *QueryFilter) ([]User, error) {
	return svc.repo.FilterUsers(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	if uu.Email != "" {
		if err := svc.checkUniqueness(ctx, uu.Email, User{ID: id}); err != nil {
			return User{}, err
		}
	}

	usr := User{
		ID:         id,
		Name:       uu.Name,
		Email:      uu.Email,
		Phone:      null.NewString(uu.Phone, uu.Phone != ""),
		Title:      null.NewString(uu.Title, uu.Title != ""),
		Department: null.NewString(uu.Department, uu.Department != ""),
		Roles:      uu.Roles,
		UpdatedAt:  time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

// auth.AccountFinder implementation

func (svc *Service) FindAccountByIdentifier(ctx context.Context, identifier string) (auth.Account, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, identifier)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return auth.Account{}, auth.ErrAccountNotFound
		}
		return auth.Account{}, err
	}
	return auth.Account{
		ID:           usr.ID,
		Name:         usr.Name,
		Email:        usr.Email,
		SchoolID:     usr.SchoolID,
		Roles:        usr.Roles,
		IsActive:     usr.IsActive,
		PasswordHash: usr.PasswordHash,
	}, nil
}

func (svc *Service) SetAccountLastLogin(ctx context.Context, id string) error {
	return svc.repo.SetUserLastLogin(ctx, id, time.Now().UTC())
}
