package course

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teayouth/portal/core"
)

var ErrNotFound = errors.New("course not found")

// Course is a catalog entry; its attached resources live in core/resource.
type Course struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Summary     null.String `json:"summary"`
	Description null.String `json:"description"`
	Category    null.String `json:"category"`
	Grade       null.String `json:"grade"`
	CoverKey    null.String `json:"cover_key"`
	SortOrder   int         `json:"sort_order"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Grade       string `json:"grade"`
	CoverKey    string `json:"cover_key"`
	SortOrder   int    `json:"sort_order"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Summary = core.CleanString(nc.Summary)
	return core.TranslateValidationErrors(core.Validate.Struct(nc))
}

// UpdateCourse contains information needed to update an existing Course.
type UpdateCourse struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Grade       string `json:"grade"`
	CoverKey    string `json:"cover_key"`
	SortOrder   *int   `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

func (uc *UpdateCourse) Validate() error {
	uc.Title = core.CleanString(uc.Title)
	uc.Summary = core.CleanString(uc.Summary)
	return core.TranslateValidationErrors(core.Validate.Struct(uc))
}

// QueryFilter applies AND operation on available fields.
type QueryFilter struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	Grade    string `json:"grade"`
	IsActive *bool  `json:"is_active"`
}

type Repository interface {
	CreateCourse(ctx context.Context, crs Course) (Course, error)
	GetCourseByID(ctx context.Context, id string) (Course, error)
	QueryCourses(ctx context.Context, filter *QueryFilter) ([]Course, error)
	UpdateCourse(ctx context.Context, crs Course, sortOrder *int, isActive *bool) (Course, error)
	DeleteCoursesByID(ctx context.Context, ids ...string) error
}
