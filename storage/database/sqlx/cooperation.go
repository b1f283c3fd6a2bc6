package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teayouth/portal/core/cooperation"
)

type applicationRow struct {
	ID            string      `db:"id"`
	SchoolName    string      `db:"school_name"`
	ContactPerson string      `db:"contact_person"`
	ContactPhone  string      `db:"contact_phone"`
	ContactEmail  string      `db:"contact_email"`
	Province      null.String `db:"province"`
	City          null.String `db:"city"`
	Message       null.String `db:"message"`
	Status        string      `db:"status"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (r applicationRow) unrow() cooperation.Application {
	return cooperation.Application{
		ID:            r.ID,
		SchoolName:    r.SchoolName,
		ContactPerson: r.ContactPerson,
		ContactPhone:  r.ContactPhone,
		ContactEmail:  r.ContactEmail,
		Province:      r.Province,
		City:          r.City,
		Message:       r.Message,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type applicationRepository struct {
	db *sqlx.DB
}

var _ cooperation.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *sqlx.DB) *applicationRepository {
	return &applicationRepository{db: db}
}

func (repo applicationRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return cooperation.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo applicationRepository) CreateApplication(ctx context.Context, app cooperation.Application) (cooperation.Application, error) {
	app.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO cooperation_application (id, school_name, contact_person, contact_phone, contact_email, province, city, message, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		app.ID, app.SchoolName, app.ContactPerson, app.ContactPhone, app.ContactEmail,
		app.Province, app.City, app.Message, app.Status, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return cooperation.Application{}, errors.Wrap(err, "inserting cooperation application")
	}
	return app, nil
}

func (repo applicationRepository) GetApplicationByID(ctx context.Context, id string) (cooperation.Application, error) {
	var row applicationRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM cooperation_application WHERE id = $1`, id); err != nil {
		return cooperation.Application{}, repo.trapNoRowsErr(err, "getting application by id")
	}
	return row.unrow(), nil
}

func (repo applicationRepository) QueryApplications(ctx context.Context, status string) ([]cooperation.Application, error) {
	query := `SELECT * FROM cooperation_application`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var rows []applicationRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying applications")
	}

	apps := make([]cooperation.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, row.unrow())
	}
	return apps, nil
}

func (repo applicationRepository) SetApplicationStatus(ctx context.Context, id, status string) (cooperation.Application, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE cooperation_application SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return cooperation.Application{}, errors.Wrap(err, "updating application status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cooperation.Application{}, cooperation.ErrNotFound
	}
	return repo.GetApplicationByID(ctx, id)
}
