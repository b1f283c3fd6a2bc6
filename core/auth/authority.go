package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/teayouth/portal/core"
)

var (
	NowFunc = time.Now // mockable

	// ErrInvalidCredential covers every verification failure: malformed
	// token, unknown or forged signature, expired credential. Callers are
	// never told which check failed.
	ErrInvalidCredential = errors.New("invalid credential")

	errIncompletePrincipal = errors.New("principal identity, roles and school are required")
)

// Principal is the authenticated actor decoded from a verified credential.
type Principal struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	SchoolID string   `json:"school_id"`
	Roles    []string `json:"roles"`
}

// HasRolePrefix reports whether any of the principal's roles starts with one
// of the given prefixes.
func (p Principal) HasRolePrefix(prefixes ...string) bool {
	for _, role := range p.Roles {
		for _, prefix := range prefixes {
			if strings.HasPrefix(role, prefix) {
				return true
			}
		}
	}
	return false
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64    `json:"oriat,omitempty"`
	Email        string   `json:"email,omitempty"`
	SchoolID     string   `json:"school_id,omitempty"`
	Roles        []string `json:"roles,omitempty"`
}

func (c *Claims) Principal() Principal {
	return Principal{
		ID:       c.Subject,
		Email:    c.Email,
		SchoolID: c.SchoolID,
		Roles:    c.Roles,
	}
}

type signingKey struct {
	id     string // embedded in the token "kid" header
	secret []byte
}

func newSigningKey(secret string) signingKey {
	sum := sha256.Sum256([]byte(secret))
	return signingKey{id: hex.EncodeToString(sum[:4]), secret: []byte(secret)}
}

// Authority issues and verifies the signed, time-limited session credentials.
//
// Verification is stateless: a credential stays valid until its natural
// expiry, there is no server-side revocation list. Forced invalidation before
// expiry is done operationally by rotating the signing secret; the previous
// secret keeps verifying during the rotation window and is then removed.
type Authority struct {
	issuer                 string
	keys                   []signingKey // current key first
	expirationDelta        time.Duration
	refreshExpirationDelta time.Duration
}

func NewAuthority(conf *core.Config) *Authority {
	keys := []signingKey{newSigningKey(conf.SecretKey)}
	if conf.PreviousSecretKey != "" {
		keys = append(keys, newSigningKey(conf.PreviousSecretKey))
	}
	return &Authority{
		issuer:                 conf.AppName,
		keys:                   keys,
		expirationDelta:        conf.Server.JWTExpirationDelta,
		refreshExpirationDelta: conf.Server.JWTRefreshExpirationDelta,
	}
}

func (a *Authority) ExpirationDelta() time.Duration { return a.expirationDelta }

// NewClaims builds the claims for a principal. origIat carries over the
// original issuance time on refresh; first issuance uses now.
func (a *Authority) NewClaims(p Principal, origIat ...int64) *Claims {
	now := NowFunc()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    a.issuer,
			Subject:   p.ID,
			ExpiresAt: now.Add(a.expirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        p.Email,
		SchoolID:     p.SchoolID,
		Roles:        p.Roles,
	}
}

// Sign generates a signed token string representing the Claims.
func (a *Authority) Sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = a.keys[0].id

	ss, err := token.SignedString(a.keys[0].secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Issue mints a credential for the principal. An explicit expiration delta
// overrides the configured one; every decode of the credential before its
// expiry reproduces the principal exactly.
func (a *Authority) Issue(p Principal, delta ...time.Duration) (string, error) {
	if p.ID == "" || p.SchoolID == "" || len(p.Roles) == 0 {
		return "", errIncompletePrincipal
	}

	claims := a.NewClaims(p)
	if len(delta) > 0 && delta[0] > 0 {
		claims.ExpiresAt = NowFunc().Add(delta[0]).Unix()
	}
	return a.Sign(claims)
}

// Verify decodes and checks a credential, returning the principal it binds.
func (a *Authority) Verify(token string) (Principal, error) {
	claims, err := a.VerifyClaims(token)
	if err != nil {
		return Principal{}, err
	}
	return claims.Principal(), nil
}

// VerifyClaims is Verify for callers that also need the raw claims (refresh).
func (a *Authority) VerifyClaims(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, a.keyFunc)
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredential
	}
	return claims, nil
}

// RefreshExpired reports whether the refresh window since the original
// issuance has passed.
func (a *Authority) RefreshExpired(claims *Claims) bool {
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.refreshExpirationDelta)
	return NowFunc().After(expTime)
}

func (a *Authority) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrInvalidCredential
	}
	kid, _ := token.Header["kid"].(string)
	for _, key := range a.keys {
		if key.id == kid {
			return key.secret, nil
		}
	}
	return nil, ErrInvalidCredential
}
