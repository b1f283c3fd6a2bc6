package cooperation

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teayouth/portal/core"
)

var (
	ErrNotFound      = errors.New("application not found")
	ErrInvalidStatus = errors.New("invalid application status")
)

// Application statuses
const (
	StatusPending   = "PENDING"
	StatusContacted = "CONTACTED"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
)

var Statuses = []string{StatusPending, StatusContacted, StatusApproved, StatusRejected}

// Application is a cooperation request submitted by a school through the
// public site.
type Application struct {
	ID            string      `json:"id"`
	SchoolName    string      `json:"school_name"`
	ContactPerson string      `json:"contact_person"`
	ContactPhone  string      `json:"contact_phone"`
	ContactEmail  string      `json:"contact_email"`
	Province      null.String `json:"province"`
	City          null.String `json:"city"`
	Message       null.String `json:"message"`
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"created_at"` // UTC
	UpdatedAt     time.Time   `json:"updated_at"` // UTC
}

// NewApplication contains the public intake form fields.
type NewApplication struct {
	SchoolName    string `json:"school_name" validate:"required"`
	ContactPerson string `json:"contact_person" validate:"required"`
	ContactPhone  string `json:"contact_phone" validate:"required"`
	ContactEmail  string `json:"contact_email" validate:"required,email"`
	Province      string `json:"province"`
	City          string `json:"city"`
	Message       string `json:"message"`
}

func (na *NewApplication) Validate() error {
	na.SchoolName = core.CleanString(na.SchoolName)
	na.ContactPerson = core.CleanString(na.ContactPerson)
	na.ContactPhone = core.CleanString(na.ContactPhone)
	na.ContactEmail = core.CleanString(na.ContactEmail, true /* lower */)
	na.Message = core.CleanString(na.Message)
	return core.TranslateValidationErrors(core.Validate.Struct(na))
}

type Repository interface {
	CreateApplication(ctx context.Context, app Application) (Application, error)
	GetApplicationByID(ctx context.Context, id string) (Application, error)
	QueryApplications(ctx context.Context, status string) ([]Application, error)
	SetApplicationStatus(ctx context.Context, id, status string) (Application, error)
}
