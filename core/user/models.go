package user

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/teayouth/portal/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Teacher
	RoleTeacher = "teacher:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminOwner}
	TeacherRoles = []string{RoleTeacher}
	AllRoles     = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner: 30,
		RoleAdmin:      21,

		// Teachers: 20 - 11
		RoleTeacher: 11,
	}

	Roles = []Role{
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 3)
	all = append(all, AdminRoles...)
	all = append(all, TeacherRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// User is a portal account: a teacher or administrator attached to a school.
type User struct {
	ID           string      `json:"id"`
	SchoolID     string      `json:"school_id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        null.String `json:"phone"`
	Title        null.String `json:"title"`
	Department   null.String `json:"department"`
	IsActive     bool        `json:"is_active"`
	Roles        []string    `json:"roles"`
	PasswordHash []byte      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at"` // UTC
	LastLogin    time.Time   `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u *User) IsTeacher() bool {
	return u.RoleStartsWith(RoleTeacher)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone"`
	SchoolID        string   `json:"school_id" validate:"required"`
	Title           string   `json:"title"`
	Department      string   `json:"department"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) Validate() error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Phone = core.CleanString(nu.Phone)
	nu.Title = core.CleanString(nu.Title)
	nu.Department = core.CleanString(nu.Department)
	return core.TranslateValidationErrors(core.Validate.Struct(nu))
}

// UpdateUser contains information needed to update an existing User.
type UpdateUser struct {
	Name       string   `json:"name"`
	Email      string   `json:"email" validate:"omitempty,email"`
	Phone      string   `json:"phone"`
	Title      string   `json:"title"`
	Department string   `json:"department"`
	Password   string   `json:"password"`
	IsActive   *bool    `json:"is_active"`
	Roles      []string `json:"roles" validate:"omitempty,allroles"`
}

func (uu *UpdateUser) Validate() error {
	uu.Name = core.CleanString(uu.Name)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.Phone = core.CleanString(uu.Phone)
	uu.Title = core.CleanString(uu.Title)
	uu.Department = core.CleanString(uu.Department)
	return core.TranslateValidationErrors(core.Validate.Struct(uu))
}

// QueryFilter applies AND operation on available fields.
// Search does a case-insensitive match on one of Name or Email.
type QueryFilter struct {
	Search   string `json:"search"`
	SchoolID string `json:"school_id"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active"`
}
