package resource

import (
	"github.com/pkg/errors"

	"github.com/teayouth/portal/core/auth"
)

var (
	// ErrUnauthenticated: no (valid) credential was supplied where one is
	// required. Terminal; a new credential is needed.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden: the credential is valid but its role/scope does not
	// satisfy the resource's access level. Terminal.
	ErrForbidden = errors.New("permission denied")
)

// policy decides whether a principal may obtain a delivery URL for a
// resource with a given access level. A nil principal means no credential
// was presented.
type policy func(p *auth.Principal, res Resource, premiumRoles []string) error

var policies = map[AccessLevel]policy{
	AccessPublic:        allowAll,
	AccessAuthenticated: requireAuthenticated,
	AccessSchoolOnly:    requireSameSchool,
	AccessPremium:       requirePremiumRole,
}

// Authorize applies the access policy for the resource's level. Unknown
// levels never grant.
func Authorize(p *auth.Principal, res Resource, premiumRoles []string) error {
	pol, ok := policies[res.AccessLevel]
	if !ok {
		return ErrForbidden
	}
	return pol(p, res, premiumRoles)
}

func allowAll(_ *auth.Principal, _ Resource, _ []string) error {
	return nil
}

func requireAuthenticated(p *auth.Principal, _ Resource, _ []string) error {
	if p == nil {
		return ErrUnauthenticated
	}
	return nil
}

func requireSameSchool(p *auth.Principal, res Resource, _ []string) error {
	if p == nil {
		return ErrUnauthenticated
	}
	// a SCHOOL_ONLY resource without an owning school never grants
	if !res.SchoolID.Valid || res.SchoolID.String == "" {
		return ErrForbidden
	}
	if p.SchoolID != res.SchoolID.String {
		return ErrForbidden
	}
	return nil
}

func requirePremiumRole(p *auth.Principal, _ Resource, premiumRoles []string) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if !p.HasRolePrefix(premiumRoles...) {
		return ErrForbidden
	}
	return nil
}
