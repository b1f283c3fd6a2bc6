package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/teayouth/portal/core/achievement"
)

type achievementRepository struct {
	db *achievementTable
}

var _ achievement.Repository = (*achievementRepository)(nil) // interface compliance check

func NewAchievementRepository(db *DB) achievement.Repository {
	return &achievementRepository{db: db.achievement}
}

func (repo *achievementRepository) query() []achievement.Achievement {
	achs := make([]achievement.Achievement, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		achs = append(achs, *a)
	}
	return achs
}

func (repo *achievementRepository) CreateAchievement(ctx context.Context, ach achievement.Achievement) (achievement.Achievement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ach.ID = uuid.New().String()
	repo.db.table[ach.ID] = &ach
	return ach, nil
}

func (repo *achievementRepository) GetAchievementByID(ctx context.Context, id string) (achievement.Achievement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ach, ok := repo.db.table[id]; ok {
		return *ach, nil
	}
	return achievement.Achievement{}, achievement.ErrNotFound
}

func (repo *achievementRepository) GetAchievementByShareToken(ctx context.Context, token string) (achievement.Achievement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, ach := range repo.query() {
		if ach.ShareToken == token {
			return ach, nil
		}
	}
	return achievement.Achievement{}, achievement.ErrNotFound
}

func (repo *achievementRepository) QueryAchievementsBySchool(ctx context.Context, schoolID string) ([]achievement.Achievement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var achs []achievement.Achievement
	for _, ach := range repo.query() {
		if ach.SchoolID == schoolID {
			achs = append(achs, ach)
		}
	}
	return achs, nil
}

func (repo *achievementRepository) UpdateAchievement(ctx context.Context, ach achievement.Achievement, isPublished *bool) (achievement.Achievement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origAch, ok := repo.db.table[ach.ID]
	if !ok {
		return achievement.Achievement{}, achievement.ErrNotFound
	}
	if ach.Title != "" {
		origAch.Title = ach.Title
	}
	if ach.Description.Valid {
		origAch.Description = ach.Description
	}
	if ach.CoverKey.Valid {
		origAch.CoverKey = ach.CoverKey
	}
	if isPublished != nil {
		origAch.IsPublished = *isPublished
	}
	origAch.UpdatedAt = ach.UpdatedAt

	repo.db.table[ach.ID] = origAch
	return *origAch, nil
}

func (repo *achievementRepository) DeleteAchievementsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
