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

	"github.com/teayouth/portal/core/course"
)

type courseRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Summary     null.String `db:"summary"`
	Description null.String `db:"description"`
	Category    null.String `db:"category"`
	Grade       null.String `db:"grade"`
	CoverKey    null.String `db:"cover_key"`
	SortOrder   int         `db:"sort_order"`
	IsActive    bool        `db:"is_active"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r courseRow) unrow() course.Course {
	return course.Course{
		ID:          r.ID,
		Title:       r.Title,
		Summary:     r.Summary,
		Description: r.Description,
		Category:    r.Category,
		Grade:       r.Grade,
		CoverKey:    r.CoverKey,
		SortOrder:   r.SortOrder,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return course.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO course (id, title, summary, description, category, grade, cover_key, sort_order, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		crs.ID, crs.Title, crs.Summary, crs.Description, crs.Category, crs.Grade,
		crs.CoverKey, crs.SortOrder, crs.IsActive, crs.CreatedAt, crs.UpdatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "getting course by id")
	}
	return row.unrow(), nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter) ([]course.Course, error) {
	conds := []string{"TRUE"}
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			conds = append(conds, fmt.Sprintf("(title ILIKE %s OR summary ILIKE %s)", p, p))
		}
		if filter.Category != "" {
			conds = append(conds, fmt.Sprintf("category = %s", arg(filter.Category)))
		}
		if filter.Grade != "" {
			conds = append(conds, fmt.Sprintf("grade = %s", arg(filter.Grade)))
		}
		if filter.IsActive != nil {
			conds = append(conds, fmt.Sprintf("is_active = %s", arg(*filter.IsActive)))
		}
	}

	query := `SELECT * FROM course WHERE ` + strings.Join(conds, " AND ") + " ORDER BY sort_order, created_at DESC"
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.unrow())
	}
	return courses, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course, sortOrder *int, isActive *bool) (course.Course, error) {
	sets := []string{"updated_at = NOW()"}
	var args []interface{}
	set := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if crs.Title != "" {
		set("title", crs.Title)
	}
	if crs.Summary.Valid {
		set("summary", crs.Summary)
	}
	if crs.Description.Valid {
		set("description", crs.Description)
	}
	if crs.Category.Valid {
		set("category", crs.Category)
	}
	if crs.Grade.Valid {
		set("grade", crs.Grade)
	}
	if crs.CoverKey.Valid {
		set("cover_key", crs.CoverKey)
	}
	if sortOrder != nil {
		set("sort_order", *sortOrder)
	}
	if isActive != nil {
		set("is_active", *isActive)
	}

	args = append(args, crs.ID)
	query := fmt.Sprintf(`UPDATE course SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.GetCourseByID(ctx, crs.ID)
}

func (repo courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting courses")
}
