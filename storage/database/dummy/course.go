package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/teayouth/portal/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) query() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].SortOrder < courses[j].SortOrder })
	return courses
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = uuid.New().String()
	repo.db.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := repo.query()
	if filter == nil {
		return courses, nil
	}

	if filter.Search != "" {
		var filtered []course.Course
		search := strings.ToLower(filter.Search)
		for _, c := range courses {
			if strings.Contains(strings.ToLower(c.Title), search) ||
				strings.Contains(strings.ToLower(c.Summary.String), search) {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if courses != nil && filter.Category != "" {
		var filtered []course.Course
		for _, c := range courses {
			if c.Category.String == filter.Category {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if courses != nil && filter.Grade != "" {
		var filtered []course.Course
		for _, c := range courses {
			if c.Grade.String == filter.Grade {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if courses != nil && filter.IsActive != nil {
		var filtered []course.Course
		for _, c := range courses {
			if c.IsActive == *filter.IsActive {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}

	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course, sortOrder *int, isActive *bool) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origCrs, ok := repo.db.table[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	if crs.Title != "" {
		origCrs.Title = crs.Title
	}
	if crs.Summary.Valid {
		origCrs.Summary = crs.Summary
	}
	if crs.Description.Valid {
		origCrs.Description = crs.Description
	}
	if crs.Category.Valid {
		origCrs.Category = crs.Category
	}
	if crs.Grade.Valid {
		origCrs.Grade = crs.Grade
	}
	if crs.CoverKey.Valid {
		origCrs.CoverKey = crs.CoverKey
	}
	if sortOrder != nil {
		origCrs.SortOrder = *sortOrder
	}
	if isActive != nil {
		origCrs.IsActive = *isActive
	}
	origCrs.UpdatedAt = crs.UpdatedAt

	repo.db.table[crs.ID] = origCrs
	return *origCrs, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
