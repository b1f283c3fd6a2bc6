package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teayouth/portal/core/school"
)

type schoolRow struct {
	ID            string      `db:"id"`
	Name          string      `db:"name"`
	Code          string      `db:"code"`
	Province      null.String `db:"province"`
	City          null.String `db:"city"`
	District      null.String `db:"district"`
	Address       null.String `db:"address"`
	ContactPerson null.String `db:"contact_person"`
	ContactPhone  null.String `db:"contact_phone"`
	ContactEmail  null.String `db:"contact_email"`
	Description   null.String `db:"description"`
	IsActive      bool        `db:"is_active"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (r schoolRow) unrow() school.School {
	return school.School{
		ID:            r.ID,
		Name:          r.Name,
		Code:          r.Code,
		Province:      r.Province,
		City:          r.City,
		District:      r.District,
		Address:       r.Address,
		ContactPerson: r.ContactPerson,
		ContactPhone:  r.ContactPhone,
		ContactEmail:  r.ContactEmail,
		Description:   r.Description,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo schoolRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return school.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo schoolRepository) CheckCodeUniqueness(ctx context.Context, code string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM school WHERE code = $1)`, code)
	if err != nil {
		return errors.Wrap(err, "checking code uniqueness")
	}
	if exists {
		return school.ErrCodeExists
	}
	return nil
}

func (repo schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	sch.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO school (id, name, code, province, city, district, address, contact_person, contact_phone, contact_email, description, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		sch.ID, sch.Name, sch.Code, sch.Province, sch.City, sch.District, sch.Address,
		sch.ContactPerson, sch.ContactPhone, sch.ContactEmail, sch.Description,
		sch.IsActive, sch.CreatedAt, sch.UpdatedAt,
	)
	if err != nil {
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return sch, nil
}

func (repo schoolRepository) GetSchoolByID(ctx context.Context, id string) (school.School, error) {
	var row schoolRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM school WHERE id = $1`, id); err != nil {
		return school.School{}, repo.trapNoRowsErr(err, "getting school by id")
	}
	return row.unrow(), nil
}

func (repo schoolRepository) GetSchoolByCode(ctx context.Context, code string) (school.School, error) {
	var row schoolRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM school WHERE code = $1`, code); err != nil {
		return school.School{}, repo.trapNoRowsErr(err, "getting school by code")
	}
	return row.unrow(), nil
}

func (repo schoolRepository) QueryAllSchools(ctx context.Context) ([]school.School, error) {
	var rows []schoolRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM school ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying schools")
	}
	schools := make([]school.School, 0, len(rows))
	for _, row := range rows {
		schools = append(schools, row.unrow())
	}
	return schools, nil
}

func (repo schoolRepository) UpdateSchool(ctx context.Context, sch school.School, isActive *bool) (school.School, error) {
	sets := []string{"updated_at = NOW()"}
	var args []interface{}
	set := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if sch.Name != "" {
		set("name", sch.Name)
	}
	if sch.Province.Valid {
		set("province", sch.Province)
	}
	if sch.City.Valid {
		set("city", sch.City)
	}
	if sch.District.Valid {
		set("district", sch.District)
	}
	if sch.Address.Valid {
		set("address", sch.Address)
	}
	if sch.ContactPerson.Valid {
		set("contact_person", sch.ContactPerson)
	}
	if sch.ContactPhone.Valid {
		set("contact_phone", sch.ContactPhone)
	}
	if sch.ContactEmail.Valid {
		set("contact_email", sch.ContactEmail)
	}
	if sch.Description.Valid {
		set("description", sch.Description)
	}
	if isActive != nil {
		set("is_active", *isActive)
	}

	args = append(args, sch.ID)
	query := fmt.Sprintf(`UPDATE school SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return school.School{}, errors.Wrap(err, "updating school")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.School{}, school.ErrNotFound
	}
	return repo.GetSchoolByID(ctx, sch.ID)
}
