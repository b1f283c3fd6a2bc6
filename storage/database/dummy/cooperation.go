package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/teayouth/portal/core/cooperation"
)

type applicationRepository struct {
	db *applicationTable
}

var _ cooperation.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *DB) cooperation.Repository {
	return &applicationRepository{db: db.cooperation}
}

func (repo *applicationRepository) query() []cooperation.Application {
	apps := make([]cooperation.Application, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		apps = append(apps, *a)
	}
	return apps
}

func (repo *applicationRepository) CreateApplication(ctx context.Context, app cooperation.Application) (cooperation.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	app.ID = uuid.New().String()
	repo.db.table[app.ID] = &app
	return app, nil
}

func (repo *applicationRepository) GetApplicationByID(ctx context.Context, id string) (cooperation.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if app, ok := repo.db.table[id]; ok {
		return *app, nil
	}
	return cooperation.Application{}, cooperation.ErrNotFound
}

func (repo *applicationRepository) QueryApplications(ctx context.Context, status string) ([]cooperation.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	apps := repo.query()
	if status == "" {
		return apps, nil
	}

	var filtered []cooperation.Application
	for _, app := range apps {
		if app.Status == status {
			filtered = append(filtered, app)
		}
	}
	return filtered, nil
}

func (repo *applicationRepository) SetApplicationStatus(ctx context.Context, id, status string) (cooperation.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	app, ok := repo.db.table[id]
	if !ok {
		return cooperation.Application{}, cooperation.ErrNotFound
	}
	app.Status = status
	return *app, nil
}
