package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/teayouth/portal/core"
	"github.com/teayouth/portal/core/school"
	"github.com/teayouth/portal/core/user"
	dummydb "github.com/teayouth/portal/storage/database/dummy"
)

func setup(t *testing.T) *commandLine {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening dummy db: %v", err)
	}
	return &commandLine{
		conf:   &core.Config{},
		db:     &sqlx.DB{},
		usrSvc: user.NewService(dummydb.NewUserRepository(db)),
		schSvc: school.NewService(dummydb.NewSchoolRepository(db)),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr, err := cli.usrSvc.Create(context.Background(), user.NewUser{
		Name:            "Awe Mwamba",
		Email:           "awe@test.cd",
		Password:        "old-password",
		PasswordConfirm: "old-password",
		Roles:           []string{user.RoleTeacher},
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "brand-new-pwd"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshed, err := cli.usrSvc.GetByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetByID() failed, %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if errors.Cause(err) != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	ctx := context.Background()
	sch, err := cli.schSvc.Create(ctx, school.NewSchool{Name: "Test School", Code: "TST001"})
	if err != nil {
		t.Fatalf("creating school: %v", err)
	}

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("password123"), nil }

	t.Run("missing flags", func(t *testing.T) {
		if err := cli.run([]string{"admin", "adduser", "-name", "Joe"}); err != errHelp {
			t.Errorf("cli.run() error = %v, wantErr %v", err, errHelp)
		}
	})

	t.Run("unknown school", func(t *testing.T) {
		err := cli.run([]string{"admin", "adduser", "-name", "Joe", "-email", "joe@test.cd", "-school", "NOPE"})
		if errors.Cause(err) != school.ErrNotFound {
			t.Errorf("cli.run() error = %v, wantErr %v", err, school.ErrNotFound)
		}
	})

	t.Run("creates a teacher", func(t *testing.T) {
		if err := cli.run([]string{"admin", "adduser", "-name", "Joe", "-email", "joe@test.cd", "-school", sch.Code}); err != nil {
			t.Fatalf("cli.run() failed, %v", err)
		}
		usr, err := cli.usrSvc.GetByEmail(ctx, "joe@test.cd")
		if err != nil {
			t.Fatalf("GetByEmail() failed, %v", err)
		}
		if usr.SchoolID != sch.ID {
			t.Errorf("SchoolID = %v; want %v", usr.SchoolID, sch.ID)
		}
		if len(usr.Roles) != 1 || usr.Roles[0] != user.RoleTeacher {
			t.Errorf("Roles = %v; want [%v]", usr.Roles, user.RoleTeacher)
		}
		if err := usr.CheckPassword("password123"); err != nil {
			t.Errorf("CheckPassword() failed, %v", err)
		}
	})

	t.Run("updates an existing user", func(t *testing.T) {
		if err := cli.run([]string{"admin", "adduser", "-name", "Joe Kabila", "-email", "joe@test.cd", "-school", sch.Code, "-admin"}); err != nil {
			t.Fatalf("cli.run() failed, %v", err)
		}
		usr, err := cli.usrSvc.GetByEmail(ctx, "joe@test.cd")
		if err != nil {
			t.Fatalf("GetByEmail() failed, %v", err)
		}
		if usr.Name != "Joe Kabila" {
			t.Errorf("Name = %v; want Joe Kabila", usr.Name)
		}
		if !usr.IsAdmin() {
			t.Errorf("Roles = %v; want admin roles", usr.Roles)
		}
	})
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)

	ctx := context.Background()
	for i := 0; i < 2; i++ { // idempotent
		if err := cli.run([]string{"admin", "seed"}); err != nil {
			t.Fatalf("cli.run() failed, %v", err)
		}
	}

	sch, err := cli.schSvc.GetByCode(ctx, demoSchoolCode)
	if err != nil {
		t.Fatalf("GetByCode() failed, %v", err)
	}

	usr, err := cli.usrSvc.GetByEmail(ctx, demoTeacherEmail)
	if err != nil {
		t.Fatalf("GetByEmail() failed, %v", err)
	}
	if usr.SchoolID != sch.ID {
		t.Errorf("SchoolID = %v; want %v", usr.SchoolID, sch.ID)
	}
	if err := usr.CheckPassword(demoTeacherPwd); err != nil {
		t.Errorf("CheckPassword() failed, %v", err)
	}

	schools, err := cli.schSvc.QueryAll(ctx)
	if err != nil {
		t.Fatalf("QueryAll() failed, %v", err)
	}
	if len(schools) != 1 {
		t.Errorf("schools = %d; want 1", len(schools))
	}
}
