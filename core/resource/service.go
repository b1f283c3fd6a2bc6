package resource

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/teayouth/portal/core"
	"github.com/teayouth/portal/core/auth"
)

type Service struct {
	repo Repository
	gate *Gate
}

func NewService(repo Repository, gate *Gate) *Service {
	return &Service{repo: repo, gate: gate}
}

func (svc *Service) Create(ctx context.Context, nr NewResource) (Resource, error) {
	now := time.Now().UTC()
	res := Resource{
		SchoolID:    null.NewString(nr.SchoolID, nr.SchoolID != ""),
		CourseID:    null.NewString(nr.CourseID, nr.CourseID != ""),
		Title:       nr.Title,
		Description: null.NewString(nr.Description, nr.Description != ""),
		FileKey:     nr.FileKey,
		FileType:    null.NewString(nr.FileType, nr.FileType != ""),
		FileSize:    null.NewInt64(nr.FileSize, nr.FileSize > 0),
		AccessLevel: AccessLevel(nr.AccessLevel),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateResource(ctx, res)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Resource, error) {
	return svc.repo.GetResourceByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Resource, error) {
	return svc.repo.QueryResources(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, ur UpdateResource) (Resource, error) {
	res := Resource{
		ID:          id,
		CourseID:    null.NewString(ur.CourseID, ur.CourseID != ""),
		Title:       ur.Title,
		Description: null.NewString(ur.Description, ur.Description != ""),
		AccessLevel: AccessLevel(ur.AccessLevel),
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateResource(ctx, res, ur.IsActive)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteResourcesByID(ctx, ids...)
}

// DeliverURL authorizes the caller against the resource's access level and
// returns its delivery URL, recording the access on success. Inactive
// resources are indistinguishable from missing ones.
func (svc *Service) DeliverURL(ctx context.Context, id string, p *auth.Principal) (string, error) {
	res, err := svc.repo.GetResourceByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !res.IsActive {
		return "", ErrNotFound
	}

	url, err := svc.gate.AuthorizeAndDeliver(res, p)
	if err != nil {
		return "", err
	}

	if err = svc.repo.IncrementResourceViewCount(ctx, res.ID); err != nil {
		return "", core.NewDependencyError("recording access", err)
	}
	return url, nil
}
