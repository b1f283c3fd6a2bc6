package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/teayouth/portal/core/resource"
)

type resourceRow struct {
	ID            string      `db:"id"`
	SchoolID      null.String `db:"school_id"`
	CourseID      null.String `db:"course_id"`
	Title         string      `db:"title"`
	Description   null.String `db:"description"`
	FileKey       string      `db:"file_key"`
	FileType      null.String `db:"file_type"`
	FileSize      null.Int64  `db:"file_size"`
	AccessLevel   string      `db:"access_level"`
	IsActive      bool        `db:"is_active"`
	ViewCount     int         `db:"view_count"`
	DownloadCount int         `db:"download_count"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (r resourceRow) unrow() resource.Resource {
	return resource.Resource{
		ID:            r.ID,
		SchoolID:      r.SchoolID,
		CourseID:      r.CourseID,
		Title:         r.Title,
		Description:   r.Description,
		FileKey:       r.FileKey,
		FileType:      r.FileType,
		FileSize:      r.FileSize,
		AccessLevel:   resource.AccessLevel(r.AccessLevel),
		IsActive:      r.IsActive,
		ViewCount:     r.ViewCount,
		DownloadCount: r.DownloadCount,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type resourceRepository struct {
	db *sqlx.DB
}

var _ resource.Repository = (*resourceRepository)(nil) // interface compliance check

func NewResourceRepository(db *sqlx.DB) *resourceRepository {
	return &resourceRepository{db: db}
}

func (repo resourceRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return resource.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo resourceRepository) CreateResource(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	res.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO resource (id, school_id, course_id, title, description, file_key, file_type, file_size, access_level, is_active, view_count, download_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, 0, $11, $12)`,
		res.ID, res.SchoolID, res.CourseID, res.Title, res.Description, res.FileKey,
		res.FileType, res.FileSize, string(res.AccessLevel), res.IsActive, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return resource.Resource{}, errors.Wrap(err, "inserting resource")
	}
	return res, nil
}

func (repo resourceRepository) GetResourceByID(ctx context.Context, id string) (resource.Resource, error) {
	var row resourceRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM resource WHERE id = $1`, id); err != nil {
		return resource.Resource{}, repo.trapNoRowsErr(err, "getting resource by id")
	}
	return row.unrow(), nil
}

func (repo resourceRepository) QueryResources(ctx context.Context, filter *resource.QueryFilter) ([]resource.Resource, error) {
	conds := []string{"TRUE"}
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			conds = append(conds, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", p, p))
		}
		if filter.SchoolID != "" {
			conds = append(conds, fmt.Sprintf("school_id = %s", arg(filter.SchoolID)))
		}
		if filter.CourseID != "" {
			conds = append(conds, fmt.Sprintf("course_id = %s", arg(filter.CourseID)))
		}
		if filter.AccessLevel != "" {
			conds = append(conds, fmt.Sprintf("access_level = %s", arg(string(filter.AccessLevel))))
		}
		if filter.IsActive != nil {
			conds = append(conds, fmt.Sprintf("is_active = %s", arg(*filter.IsActive)))
		}
	}

	query := `SELECT * FROM resource WHERE ` + strings.Join(conds, " AND ") + " ORDER BY created_at DESC"
	var rows []resourceRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying resources")
	}

	ress := make([]resource.Resource, 0, len(rows))
	for _, row := range rows {
		ress = append(ress, row.unrow())
	}
	return ress, nil
}

func (repo resourceRepository) UpdateResource(ctx context.Context, res resource.Resource, isActive *bool) (resource.Resource, error) {
	sets := []string{"updated_at = NOW()"}
	var args []interface{}
	set := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if res.Title != "" {
		set("title", res.Title)
	}
	if res.Description.Valid {
		set("description", res.Description)
	}
	if res.CourseID.Valid {
		set("course_id", res.CourseID)
	}
	if res.AccessLevel != "" {
		set("access_level", string(res.AccessLevel))
	}
	if isActive != nil {
		set("is_active", *isActive)
	}

	args = append(args, res.ID)
	query := fmt.Sprintf(`UPDATE resource SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	result, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return resource.Resource{}, errors.Wrap(err, "updating resource")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return resource.Resource{}, resource.ErrNotFound
	}
	return repo.GetResourceByID(ctx, res.ID)
}

func (repo resourceRepository) DeleteResourcesByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM resource WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting resources")
}

func (repo resourceRepository) IncrementResourceViewCount(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `UPDATE resource SET view_count = view_count + 1 WHERE id = $1`, id)
	return errors.Wrap(err, "incrementing view count")
}
