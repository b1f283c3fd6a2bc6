package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/teayouth/portal/core/school"
)

type schoolRepository struct {
	db *schoolTable
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db.school}
}

func (repo *schoolRepository) query() []school.School {
	schools := make([]school.School, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		schools = append(schools, *s)
	}
	return schools
}

func (repo *schoolRepository) CheckCodeUniqueness(ctx context.Context, code string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sch := range repo.query() {
		if sch.Code == code {
			return school.ErrCodeExists
		}
	}
	return nil
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sch.ID = uuid.New().String()
	repo.db.table[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) GetSchoolByID(ctx context.Context, id string) (school.School, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sch, ok := repo.db.table[id]; ok {
		return *sch, nil
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) GetSchoolByCode(ctx context.Context, code string) (school.School, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sch := range repo.query() {
		if sch.Code == code {
			return sch, nil
		}
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) QueryAllSchools(ctx context.Context) ([]school.School, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, sch school.School, isActive *bool) (school.School, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origSch, ok := repo.db.table[sch.ID]
	if !ok {
		return school.School{}, school.ErrNotFound
	}
	if sch.Name != "" {
		origSch.Name = sch.Name
	}
	if sch.Province.Valid {
		origSch.Province = sch.Province
	}
	if sch.City.Valid {
		origSch.City = sch.City
	}
	if sch.District.Valid {
		origSch.District = sch.District
	}
	if sch.Address.Valid {
		origSch.Address = sch.Address
	}
	if sch.ContactPerson.Valid {
		origSch.ContactPerson = sch.ContactPerson
	}
	if sch.ContactPhone.Valid {
		origSch.ContactPhone = sch.ContactPhone
	}
	if sch.ContactEmail.Valid {
		origSch.ContactEmail = sch.ContactEmail
	}
	if sch.Description.Valid {
		origSch.Description = sch.Description
	}
	if isActive != nil {
		origSch.IsActive = *isActive
	}
	origSch.UpdatedAt = sch.UpdatedAt

	repo.db.table[sch.ID] = origSch
	return *origSch, nil
}
