package achievement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, na NewAchievement) (Achievement, error) {
	now := time.Now().UTC()
	ach := Achievement{
		SchoolID:    na.SchoolID,
		Title:       na.Title,
		Description: null.NewString(na.Description, na.Description != ""),
		CoverKey:    null.NewString(na.CoverKey, na.CoverKey != ""),
		ShareToken:  uuid.New().String(),
		IsPublished: false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateAchievement(ctx, ach)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Achievement, error) {
	return svc.repo.GetAchievementByID(ctx, id)
}

// GetShared resolves a share token to its published achievement; unpublished
// ones are indistinguishable from missing ones.
func (svc *Service) GetShared(ctx context.Context, token string) (Achievement, error) {
	ach, err := svc.repo.GetAchievementByShareToken(ctx, token)
	if err != nil {
		return Achievement{}, err
	}
	if !ach.IsPublished {
		return Achievement{}, ErrNotFound
	}
	return ach, nil
}

func (svc *Service) QueryBySchool(ctx context.Context, schoolID string) ([]Achievement, error) {
	return svc.repo.QueryAchievementsBySchool(ctx, schoolID)
}

func (svc *Service) Update(ctx context.Context, id string, ua UpdateAchievement) (Achievement, error) {
	ach := Achievement{
		ID:          id,
		Title:       ua.Title,
		Description: null.NewString(ua.Description, ua.Description != ""),
		CoverKey:    null.NewString(ua.CoverKey, ua.CoverKey != ""),
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateAchievement(ctx, ach, ua.IsPublished)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteAchievementsByID(ctx, ids...)
}
