package resource

import (
	"github.com/teayouth/portal/core"
	"github.com/teayouth/portal/core/auth"
)

// Gate authorizes access to a stored resource and produces its delivery URL.
// It is stateless per call; authorization is all-or-nothing.
type Gate struct {
	signer       *Signer
	premiumRoles []string
}

func NewGate(signer *Signer, conf *core.Config) *Gate {
	return &Gate{signer: signer, premiumRoles: conf.Storage.PremiumRoles}
}

// AuthorizeAndDeliver applies the access policy for the resource's level
// and, on grant, mints the delivery URL: the stable public URL for PUBLIC
// resources (no credential consulted), a signed expiring one otherwise.
func (g *Gate) AuthorizeAndDeliver(res Resource, p *auth.Principal) (string, error) {
	if res.AccessLevel == AccessPublic {
		return g.signer.PublicURL(res.FileKey), nil
	}
	if err := Authorize(p, res, g.premiumRoles); err != nil {
		return "", err
	}
	return g.signer.SignedURL(res.FileKey), nil
}
