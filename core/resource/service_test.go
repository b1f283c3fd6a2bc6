package resource

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/teayouth/portal/core"
	"github.com/teayouth/portal/core/auth"
)

type fakeRepo struct {
	resources map[string]Resource
	views     map[string]int
	viewErr   error
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo(resources ...Resource) *fakeRepo {
	repo := &fakeRepo{resources: make(map[string]Resource), views: make(map[string]int)}
	for _, res := range resources {
		repo.resources[res.ID] = res
	}
	return repo
}

func (r *fakeRepo) CreateResource(ctx context.Context, res Resource) (Resource, error) {
	r.resources[res.ID] = res
	return res, nil
}

func (r *fakeRepo) GetResourceByID(ctx context.Context, id string) (Resource, error) {
	if res, ok := r.resources[id]; ok {
		return res, nil
	}
	return Resource{}, ErrNotFound
}

func (r *fakeRepo) QueryResources(ctx context.Context, filter *QueryFilter) ([]Resource, error) {
	resources := make([]Resource, 0, len(r.resources))
	for _, res := range r.resources {
		resources = append(resources, res)
	}
	return resources, nil
}

func (r *fakeRepo) UpdateResource(ctx context.Context, res Resource, isActive *bool) (Resource, error) {
	return res, nil
}

func (r *fakeRepo) DeleteResourcesByID(ctx context.Context, ids ...string) error { return nil }

func (r *fakeRepo) IncrementResourceViewCount(ctx context.Context, id string) error {
	if r.viewErr != nil {
		return r.viewErr
	}
	r.views[id]++
	return nil
}

func TestService_DeliverURL(t *testing.T) {
	ctx := context.Background()
	conf := newTestStorageConfig("")
	gate := NewGate(NewSigner(conf), conf)

	teacher := &auth.Principal{ID: "usr-1", SchoolID: "sch-1", Roles: []string{"teacher:"}}

	public := Resource{ID: "res-pub", FileKey: "covers/cover.png", AccessLevel: AccessPublic, IsActive: true}
	premium := Resource{ID: "res-prem", FileKey: "docs/report.pdf", AccessLevel: AccessPremium, IsActive: true}
	inactive := Resource{ID: "res-off", FileKey: "docs/old.pdf", AccessLevel: AccessPublic, IsActive: false}

	t.Run("grant records the access", func(t *testing.T) {
		repo := newFakeRepo(public)
		svc := NewService(repo, gate)

		url, err := svc.DeliverURL(ctx, public.ID, nil)
		assert.NoError(t, err)
		assert.NotEmpty(t, url)
		assert.Equal(t, 1, repo.views[public.ID])

		_, err = svc.DeliverURL(ctx, public.ID, teacher)
		assert.NoError(t, err)
		assert.Equal(t, 2, repo.views[public.ID])
	})

	t.Run("denial records nothing", func(t *testing.T) {
		repo := newFakeRepo(premium)
		svc := NewService(repo, gate)

		url, err := svc.DeliverURL(ctx, premium.ID, teacher)
		assert.Equal(t, ErrForbidden, err)
		assert.Empty(t, url)
		assert.Equal(t, 0, repo.views[premium.ID])
	})

	t.Run("unknown resource", func(t *testing.T) {
		svc := NewService(newFakeRepo(), gate)
		_, err := svc.DeliverURL(ctx, "nope", teacher)
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("inactive resource looks missing", func(t *testing.T) {
		svc := NewService(newFakeRepo(inactive), gate)
		_, err := svc.DeliverURL(ctx, inactive.ID, teacher)
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("failed access recording is a dependency error", func(t *testing.T) {
		repo := newFakeRepo(public)
		repo.viewErr = errors.New("connection refused")
		svc := NewService(repo, gate)

		_, err := svc.DeliverURL(ctx, public.ID, nil)
		assert.True(t, core.IsDependencyFailure(err))
	})
}
