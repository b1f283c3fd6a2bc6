package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/teayouth/portal/core/school"
	"github.com/teayouth/portal/core/user"
)

const (
	demoSchoolCode   = "DEMO001"
	demoSchoolName   = "Demo School"
	demoTeacherEmail = "teacher@demo.com"
	demoTeacherPwd   = "password123"
)

// seed loads the demo school and teacher account used by local setups.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	sch, err := cli.schSvc.GetByCode(ctx, demoSchoolCode)
	if err != nil {
		if errors.Cause(err) != school.ErrNotFound {
			return err
		}
		sch, err = cli.schSvc.Create(ctx, school.NewSchool{
			Name: demoSchoolName,
			Code: demoSchoolCode,
		})
		if err != nil {
			return errors.Wrap(err, "creating demo school")
		}
	}

	if _, err = cli.usrSvc.GetByEmail(ctx, demoTeacherEmail); err == nil {
		fmt.Println("demo data already loaded")
		return nil
	} else if errors.Cause(err) != user.ErrNotFound {
		return err
	}

	_, err = cli.usrSvc.Create(ctx, user.NewUser{
		Name:            "Demo Teacher",
		Email:           demoTeacherEmail,
		SchoolID:        sch.ID,
		Password:        demoTeacherPwd,
		PasswordConfirm: demoTeacherPwd,
		Roles:           []string{user.RoleTeacher},
	})
	if err != nil {
		return errors.Wrap(err, "creating demo teacher")
	}

	fmt.Printf("demo data loaded: %s / %s\n", demoTeacherEmail, demoTeacherPwd)
	return nil
}
