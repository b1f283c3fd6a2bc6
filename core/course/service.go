package course

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Title:       nc.Title,
		Summary:     null.NewString(nc.Summary, nc.Summary != ""),
		Description: null.NewString(nc.Description, nc.Description != ""),
		Category:    null.NewString(nc.Category, nc.Category != ""),
		Grade:       null.NewString(nc.Grade, nc.Grade != ""),
		CoverKey:    null.NewString(nc.CoverKey, nc.CoverKey != ""),
		SortOrder:   nc.SortOrder,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter)
}

// QueryActive returns the public catalog: active courses only.
func (svc *Service) QueryActive(ctx context.Context, filter *QueryFilter) ([]Course, error) {
	if filter == nil {
		filter = &QueryFilter{}
	}
	active := true
	filter.IsActive = &active
	return svc.repo.QueryCourses(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs := Course{
		ID:          id,
		Title:       uc.Title,
		Summary:     null.NewString(uc.Summary, uc.Summary != ""),
		Description: null.NewString(uc.Description, uc.Description != ""),
		Category:    null.NewString(uc.Category, uc.Category != ""),
		Grade:       null.NewString(uc.Grade, uc.Grade != ""),
		CoverKey:    null.NewString(uc.CoverKey, uc.CoverKey != ""),
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateCourse(ctx, crs, uc.SortOrder, uc.IsActive)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCoursesByID(ctx, ids...)
}
