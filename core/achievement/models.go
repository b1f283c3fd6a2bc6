package achievement

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teayouth/portal/core"
)

var ErrNotFound = errors.New("achievement not found")

// Achievement is a school accomplishment shareable through an unguessable
// token; the share page needs no credential.
type Achievement struct {
	ID          string      `json:"id"`
	SchoolID    string      `json:"school_id"`
	Title       string      `json:"title"`
	Description null.String `json:"description"`
	CoverKey    null.String `json:"cover_key"`
	ShareToken  string      `json:"share_token"`
	IsPublished bool        `json:"is_published"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

// NewAchievement contains information needed to record a new Achievement.
type NewAchievement struct {
	SchoolID    string `json:"school_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	CoverKey    string `json:"cover_key"`
}

func (na *NewAchievement) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return core.TranslateValidationErrors(core.Validate.Struct(na))
}

// UpdateAchievement contains information needed to update an existing Achievement.
type UpdateAchievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CoverKey    string `json:"cover_key"`
	IsPublished *bool  `json:"is_published"`
}

func (ua *UpdateAchievement) Validate() error {
	ua.Title = core.CleanString(ua.Title)
	ua.Description = core.CleanString(ua.Description)
	return core.TranslateValidationErrors(core.Validate.Struct(ua))
}

type Repository interface {
	CreateAchievement(ctx context.Context, ach Achievement) (Achievement, error)
	GetAchievementByID(ctx context.Context, id string) (Achievement, error)
	GetAchievementByShareToken(ctx context.Context, token string) (Achievement, error)
	QueryAchievementsBySchool(ctx context.Context, schoolID string) ([]Achievement, error)
	UpdateAchievement(ctx context.Context, ach Achievement, isPublished *bool) (Achievement, error)
	DeleteAchievementsByID(ctx context.Context, ids ...string) error
}
