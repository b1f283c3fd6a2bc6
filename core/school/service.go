package school

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/teayouth/portal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewSchool) (School, error) {
	if err := svc.repo.CheckCodeUniqueness(ctx, ns.Code); err != nil {
		if err == ErrCodeExists {
			return School{}, core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return School{}, err
	}

	now := time.Now().UTC()
	sch := School{
		Name:          ns.Name,
		Code:          ns.Code,
		Province:      null.NewString(ns.Province, ns.Province != ""),
		City:          null.NewString(ns.City, ns.City != ""),
		District:      null.NewString(ns.District, ns.District != ""),
		Address:       null.NewString(ns.Address, ns.Address != ""),
		ContactPerson: null.NewString(ns.ContactPerson, ns.ContactPerson != ""),
		ContactPhone:  null.NewString(ns.ContactPhone, ns.ContactPhone != ""),
		ContactEmail:  null.NewString(ns.ContactEmail, ns.ContactEmail != ""),
		Description:   null.NewString(ns.Description, ns.Description != ""),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateSchool(ctx, sch)
}

func (svc *Service) GetByID(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchoolByID(ctx, id)
}

func (svc *Service) GetByCode(ctx context.Context, code string) (School, error) {
	return svc.repo.GetSchoolByCode(ctx, core.CleanString(code, true /* lower */))
}

func (svc *Service) QueryAll(ctx context.Context) ([]School, error) {
	return svc.repo.QueryAllSchools(ctx)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateSchool) (School, error) {
	sch := School{
		ID:            id,
		Name:          us.Name,
		Province:      null.NewString(us.Province, us.Province != ""),
		City:          null.NewString(us.City, us.City != ""),
		District:      null.NewString(us.District, us.District != ""),
		Address:       null.NewString(us.Address, us.Address != ""),
		ContactPerson: null.NewString(us.ContactPerson, us.ContactPerson != ""),
		ContactPhone:  null.NewString(us.ContactPhone, us.ContactPhone != ""),
		ContactEmail:  null.NewString(us.ContactEmail, us.ContactEmail != ""),
		Description:   null.NewString(us.Description, us.Description != ""),
		UpdatedAt:     time.Now().UTC(),
	}
	return svc.repo.UpdateSchool(ctx, sch, us.IsActive)
}
