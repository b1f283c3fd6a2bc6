package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/teayouth/portal/core"
	"github.com/teayouth/portal/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, schoolCode, pwd string, isAdmin bool) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	sch, err := cli.schSvc.GetByCode(ctx, schoolCode)
	if err != nil {
		return errors.Wrap(err, "finding school by code")
	}

	roles := []string{user.RoleTeacher}
	if isAdmin {
		roles = user.AllRoles
	}

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		_, err = cli.usrSvc.Create(ctx, user.NewUser{
			Name:            name,
			Email:           email,
			SchoolID:        sch.ID,
			Password:        pwd,
			PasswordConfirm: pwd,
			Roles:           roles,
		})
		return err
	}

	active := true
	_, err = cli.usrSvc.Update(ctx, usr.ID, user.UpdateUser{
		Name:     name,
		Password: pwd,
		IsActive: &active,
		Roles:    roles,
	})
	return err
}
