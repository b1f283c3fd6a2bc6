package dummydb

import (
	"sync"

	"github.com/teayouth/portal/core/achievement"
	"github.com/teayouth/portal/core/cooperation"
	"github.com/teayouth/portal/core/course"
	"github.com/teayouth/portal/core/resource"
	"github.com/teayouth/portal/core/school"
	"github.com/teayouth/portal/core/user"
)

type (
	DB struct {
		user        *userTable
		school      *schoolTable
		course      *courseTable
		resource    *resourceTable
		achievement *achievementTable
		cooperation *applicationTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	schoolTable struct {
		sync.RWMutex
		table map[string]*school.School
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	resourceTable struct {
		sync.RWMutex
		table map[string]*resource.Resource
	}

	achievementTable struct {
		sync.RWMutex
		table map[string]*achievement.Achievement
	}

	applicationTable struct {
		sync.RWMutex
		table map[string]*cooperation.Application
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:        &userTable{table: make(map[string]*user.User)},
		school:      &schoolTable{table: make(map[string]*school.School)},
		course:      &courseTable{table: make(map[string]*course.Course)},
		resource:    &resourceTable{table: make(map[string]*resource.Resource)},
		achievement: &achievementTable{table: make(map[string]*achievement.Achievement)},
		cooperation: &applicationTable{table: make(map[string]*cooperation.Application)},
	}
	return db, nil
}
