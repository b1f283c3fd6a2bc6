package school

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teayouth/portal/core"
)

var (
	ErrNotFound   = errors.New("school not found")
	ErrCodeExists = errors.New("a school with this code already exists")
)

// School is the organizational unit accounts and SCHOOL_ONLY resources
// belong to.
type School struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Code          string      `json:"code"`
	Province      null.String `json:"province"`
	City          null.String `json:"city"`
	District      null.String `json:"district"`
	Address       null.String `json:"address"`
	ContactPerson null.String `json:"contact_person"`
	ContactPhone  null.String `json:"contact_phone"`
	ContactEmail  null.String `json:"contact_email"`
	Description   null.String `json:"description"`
	IsActive      bool        `json:"is_active"`
	CreatedAt     time.Time   `json:"created_at"` // UTC
	UpdatedAt     time.Time   `json:"updated_at"` // UTC
}

// NewSchool contains information needed to register a new School.
type NewSchool struct {
	Name          string `json:"name" validate:"required"`
	Code          string `json:"code" validate:"required,alphanum_"`
	Province      string `json:"province"`
	City          string `json:"city"`
	District      string `json:"district"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	ContactPhone  string `json:"contact_phone"`
	ContactEmail  string `json:"contact_email" validate:"omitempty,email"`
	Description   string `json:"description"`
}

func (ns *NewSchool) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code, true /* lower */)
	ns.ContactEmail = core.CleanString(ns.ContactEmail, true /* lower */)
	return core.TranslateValidationErrors(core.Validate.Struct(ns))
}

// UpdateSchool contains information needed to update an existing School.
type UpdateSchool struct {
	Name          string `json:"name"`
	Province      string `json:"province"`
	City          string `json:"city"`
	District      string `json:"district"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	ContactPhone  string `json:"contact_phone"`
	ContactEmail  string `json:"contact_email" validate:"omitempty,email"`
	Description   string `json:"description"`
	IsActive      *bool  `json:"is_active"`
}

func (us *UpdateSchool) Validate() error {
	us.Name = core.CleanString(us.Name)
	us.ContactEmail = core.CleanString(us.ContactEmail, true /* lower */)
	return core.TranslateValidationErrors(core.Validate.Struct(us))
}

type Repository interface {
	CheckCodeUniqueness(ctx context.Context, code string) error
	CreateSchool(ctx context.Context, sch School) (School, error)
	GetSchoolByID(ctx context.Context, id string) (School, error)
	GetSchoolByCode(ctx context.Context, code string) (School, error)
	QueryAllSchools(ctx context.Context) ([]School, error)
	UpdateSchool(ctx context.Context, sch School, isActive *bool) (School, error)
}
