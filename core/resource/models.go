package resource

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teayouth/portal/core"
)

var ErrNotFound = errors.New("resource not found")

// AccessLevel tags who may obtain a delivery URL for a resource. It is set
// once at creation and is the sole input to the authorization decision
// besides the caller's principal.
type AccessLevel string

const (
	AccessPublic        AccessLevel = "PUBLIC"
	AccessAuthenticated AccessLevel = "AUTHENTICATED"
	AccessSchoolOnly    AccessLevel = "SCHOOL_ONLY"
	AccessPremium       AccessLevel = "PREMIUM"
)

var AccessLevels = []AccessLevel{AccessPublic, AccessAuthenticated, AccessSchoolOnly, AccessPremium}

func (l AccessLevel) Valid() bool {
	for _, lvl := range AccessLevels {
		if l == lvl {
			return true
		}
	}
	return false
}

type Resource struct {
	ID            string      `json:"id"`
	SchoolID      null.String `json:"school_id"` // owning scope for SCHOOL_ONLY
	CourseID      null.String `json:"course_id"`
	Title         string      `json:"title"`
	Description   null.String `json:"description"`
	FileKey       string      `json:"-"` // opaque storage locator, never exposed raw
	FileType      null.String `json:"file_type"`
	FileSize      null.Int64  `json:"file_size"`
	AccessLevel   AccessLevel `json:"access_level"`
	IsActive      bool        `json:"is_active"`
	ViewCount     int         `json:"view_count"`
	DownloadCount int         `json:"download_count"`
	CreatedAt     time.Time   `json:"created_at"` // UTC
	UpdatedAt     time.Time   `json:"updated_at"` // UTC
}

// NewResource contains information needed to register a new Resource.
type NewResource struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	FileKey     string `json:"file_key" validate:"required"`
	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size" validate:"omitempty,gt=0"`
	AccessLevel string `json:"access_level" validate:"required,accesslevel"`
	SchoolID    string `json:"school_id"`
	CourseID    string `json:"course_id"`
}

func (nr *NewResource) Validate() error {
	nr.Title = core.CleanString(nr.Title)
	nr.Description = core.CleanString(nr.Description)
	nr.FileKey = core.CleanString(nr.FileKey)
	nr.AccessLevel = core.CleanString(nr.AccessLevel)
	return core.TranslateValidationErrors(core.Validate.Struct(nr))
}

// UpdateResource contains information needed to update an existing Resource.
type UpdateResource struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AccessLevel string `json:"access_level" validate:"omitempty,accesslevel"`
	CourseID    string `json:"course_id"`
	IsActive    *bool  `json:"is_active"`
}

func (ur *UpdateResource) Validate() error {
	ur.Title = core.CleanString(ur.Title)
	ur.Description = core.CleanString(ur.Description)
	ur.AccessLevel = core.CleanString(ur.AccessLevel)
	return core.TranslateValidationErrors(core.Validate.Struct(ur))
}

// QueryFilter applies AND operation on available fields.
type QueryFilter struct {
	Search      string      `json:"search"`
	SchoolID    string      `json:"school_id"`
	CourseID    string      `json:"course_id"`
	AccessLevel AccessLevel `json:"access_level"`
	IsActive    *bool       `json:"is_active"`
}

type Repository interface {
	CreateResource(ctx context.Context, res Resource) (Resource, error)
	GetResourceByID(ctx context.Context, id string) (Resource, error)
	QueryResources(ctx context.Context, filter *QueryFilter) ([]Resource, error)
	UpdateResource(ctx context.Context, res Resource, isActive *bool) (Resource, error)
	DeleteResourcesByID(ctx context.Context, ids ...string) error
	IncrementResourceViewCount(ctx context.Context, id string) error
}
