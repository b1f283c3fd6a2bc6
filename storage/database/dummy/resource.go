package dummydb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/teayouth/portal/core/resource"
)

type resourceRepository struct {
	db *resourceTable
}

var _ resource.Repository = (*resourceRepository)(nil) // interface compliance check

func NewResourceRepository(db *DB) resource.Repository {
	return &resourceRepository{db: db.resource}
}

func (repo *resourceRepository) query() []resource.Resource {
	resources := make([]resource.Resource, 0, len(repo.db.table))
	for _, r := range repo.db.table {
		resources = append(resources, *r)
	}
	return resources
}

func (repo *resourceRepository) CreateResource(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	res.ID = uuid.New().String()
	repo.db.table[res.ID] = &res
	return res, nil
}

func (repo *resourceRepository) GetResourceByID(ctx context.Context, id string) (resource.Resource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if res, ok := repo.db.table[id]; ok {
		return *res, nil
	}
	return resource.Resource{}, resource.ErrNotFound
}

func (repo *resourceRepository) QueryResources(ctx context.Context, filter *resource.QueryFilter) ([]resource.Resource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	resources := repo.query()
	if filter == nil {
		return resources, nil
	}

	if filter.Search != "" {
		var filtered []resource.Resource
		search := strings.ToLower(filter.Search)
		for _, r := range resources {
			if strings.Contains(strings.ToLower(r.Title), search) ||
				strings.Contains(strings.ToLower(r.Description.String), search) {
				filtered = append(filtered, r)
			}
		}
		resources = filtered
	}
	if resources != nil && filter.SchoolID != "" {
		var filtered []resource.Resource
		for _, r := range resources {
			if r.SchoolID.String == filter.SchoolID {
				filtered = append(filtered, r)
			}
		}
		resources = filtered
	}
	if resources != nil && filter.CourseID != "" {
		var filtered []resource.Resource
		for _, r := range resources {
			if r.CourseID.String == filter.CourseID {
				filtered = append(filtered, r)
			}
		}
		resources = filtered
	}
	if resources != nil && filter.AccessLevel != "" {
		var filtered []resource.Resource
		for _, r := range resources {
			if r.AccessLevel == filter.AccessLevel {
				filtered = append(filtered, r)
			}
		}
		resources = filtered
	}
	if resources != nil && filter.IsActive != nil {
		var filtered []resource.Resource
		for _, r := range resources {
			if r.IsActive == *filter.IsActive {
				filtered = append(filtered, r)
			}
		}
		resources = filtered
	}

	return resources, nil
}

func (repo *resourceRepository) UpdateResource(ctx context.Context, res resource.Resource, isActive *bool) (resource.Resource, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origRes, ok := repo.db.table[res.ID]
	if !ok {
		return resource.Resource{}, resource.ErrNotFound
	}
	if res.Title != "" {
		origRes.Title = res.Title
	}
	if res.Description.Valid {
		origRes.Description = res.Description
	}
	if res.SchoolID.Valid {
		origRes.SchoolID = res.SchoolID
	}
	if res.CourseID.Valid {
		origRes.CourseID = res.CourseID
	}
	if res.FileKey != "" {
		origRes.FileKey = res.FileKey
	}
	if res.FileType.Valid {
		origRes.FileType = res.FileType
	}
	if res.FileSize.Valid {
		origRes.FileSize = res.FileSize
	}
	if res.AccessLevel != "" {
		origRes.AccessLevel = res.AccessLevel
	}
	if isActive != nil {
		origRes.IsActive = *isActive
	}
	origRes.UpdatedAt = res.UpdatedAt

	repo.db.table[res.ID] = origRes
	return *origRes, nil
}

func (repo *resourceRepository) DeleteResourcesByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *resourceRepository) IncrementResourceViewCount(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	res, ok := repo.db.table[id]
	if !ok {
		return resource.ErrNotFound
	}
	res.ViewCount++
	return nil
}
