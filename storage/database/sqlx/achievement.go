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

	"github.com/teayouth/portal/core/achievement"
)

type achievementRow struct {
	ID          string      `db:"id"`
	SchoolID    string      `db:"school_id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	CoverKey    null.String `db:"cover_key"`
	ShareToken  string      `db:"share_token"`
	IsPublished bool        `db:"is_published"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r achievementRow) unrow() achievement.Achievement {
	return achievement.Achievement{
		ID:          r.ID,
		SchoolID:    r.SchoolID,
		Title:       r.Title,
		Description: r.Description,
		CoverKey:    r.CoverKey,
		ShareToken:  r.ShareToken,
		IsPublished: r.IsPublished,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type achievementRepository struct {
	db *sqlx.DB
}

var _ achievement.Repository = (*achievementRepository)(nil) // interface compliance check

func NewAchievementRepository(db *sqlx.DB) *achievementRepository {
	return &achievementRepository{db: db}
}

func (repo achievementRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return achievement.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo achievementRepository) CreateAchievement(ctx context.Context, ach achievement.Achievement) (achievement.Achievement, error) {
	ach.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO achievement (id, school_id, title, description, cover_key, share_token, is_published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ach.ID, ach.SchoolID, ach.Title, ach.Description, ach.CoverKey,
		ach.ShareToken, ach.IsPublished, ach.CreatedAt, ach.UpdatedAt,
	)
	if err != nil {
		return achievement.Achievement{}, errors.Wrap(err, "inserting achievement")
	}
	return ach, nil
}

func (repo achievementRepository) GetAchievementByID(ctx context.Context, id string) (achievement.Achievement, error) {
	var row achievementRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM achievement WHERE id = $1`, id); err != nil {
		return achievement.Achievement{}, repo.trapNoRowsErr(err, "getting achievement by id")
	}
	return row.unrow(), nil
}

func (repo achievementRepository) GetAchievementByShareToken(ctx context.Context, token string) (achievement.Achievement, error) {
	var row achievementRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM achievement WHERE share_token = $1`, token); err != nil {
		return achievement.Achievement{}, repo.trapNoRowsErr(err, "getting achievement by share token")
	}
	return row.unrow(), nil
}

func (repo achievementRepository) QueryAchievementsBySchool(ctx context.Context, schoolID string) ([]achievement.Achievement, error) {
	var rows []achievementRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM achievement WHERE school_id = $1 ORDER BY created_at DESC`, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying achievements by school")
	}

	achs := make([]achievement.Achievement, 0, len(rows))
	for _, row := range rows {
		achs = append(achs, row.unrow())
	}
	return achs, nil
}

func (repo achievementRepository) UpdateAchievement(ctx context.Context, ach achievement.Achievement, isPublished *bool) (achievement.Achievement, error) {
	sets := []string{"updated_at = NOW()"}
	var args []interface{}
	set := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if ach.Title != "" {
		set("title", ach.Title)
	}
	if ach.Description.Valid {
		set("description", ach.Description)
	}
	if ach.CoverKey.Valid {
		set("cover_key", ach.CoverKey)
	}
	if isPublished != nil {
		set("is_published", *isPublished)
	}

	args = append(args, ach.ID)
	query := fmt.Sprintf(`UPDATE achievement SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return achievement.Achievement{}, errors.Wrap(err, "updating achievement")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return achievement.Achievement{}, achievement.ErrNotFound
	}
	return repo.GetAchievementByID(ctx, ach.ID)
}

func (repo achievementRepository) DeleteAchievementsByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM achievement WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting achievements")
}
