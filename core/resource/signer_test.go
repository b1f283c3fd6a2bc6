package resource

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/teayouth/portal/core"
)

func newTestStorageConfig(cdnDomain string) *core.Config {
	return &core.Config{
		Storage: core.StorageConfig{
			Endpoint:           "https://oss.example.com",
			Bucket:             "portal",
			CDNDomain:          cdnDomain,
			SecretKey:          "storage-secret",
			URLExpirationDelta: time.Hour,
			PremiumRoles:       []string{"admin:"},
		},
	}
}

func TestSigner_PublicURL(t *testing.T) {
	signer := NewSigner(newTestStorageConfig(""))

	// stable across calls; no credential material in the URL
	url := signer.PublicURL("covers/cover.png")
	assert.Equal(t, "https://oss.example.com/portal/covers/cover.png", url)
	assert.Equal(t, url, signer.PublicURL("covers/cover.png"))
	assert.NotContains(t, url, "signature")

	cdn := NewSigner(newTestStorageConfig("https://cdn.example.com"))
	assert.Equal(t, "https://cdn.example.com/covers/cover.png", cdn.PublicURL("covers/cover.png"))
}

func TestSigner_SignedURL(t *testing.T) {
	signer := NewSigner(newTestStorageConfig(""))

	now := time.Now()
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	url := signer.SignedURL("docs/lesson.pdf")

	// <base>/<key>?expires=<unix>&signature=<hex>
	wantPrefix := fmt.Sprintf("https://oss.example.com/portal/docs/lesson.pdf?expires=%d&signature=", now.Add(time.Hour).Unix())
	assert.True(t, strings.HasPrefix(url, wantPrefix), url)
	assert.Len(t, url, len(wantPrefix)+signatureLen)

	assert.NoError(t, signer.VerifySignedURL(url))
}

func TestSigner_VerifySignedURL(t *testing.T) {
	signer := NewSigner(newTestStorageConfig(""))

	now := time.Now()
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	url := signer.SignedURL("docs/lesson.pdf")

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, signer.VerifySignedURL(url))
	})

	t.Run("tampered key", func(t *testing.T) {
		tampered := strings.Replace(url, "lesson.pdf", "other.pdf", 1)
		assert.Equal(t, ErrInvalidSignedURL, signer.VerifySignedURL(tampered))
	})

	t.Run("tampered expiry", func(t *testing.T) {
		expires := now.Add(time.Hour).Unix()
		tampered := strings.Replace(url, fmt.Sprintf("expires=%d", expires), fmt.Sprintf("expires=%d", expires+3600), 1)
		assert.Equal(t, ErrInvalidSignedURL, signer.VerifySignedURL(tampered))
	})

	t.Run("tampered signature", func(t *testing.T) {
		tampered := url[:len(url)-1] + "0"
		if tampered == url {
			tampered = url[:len(url)-1] + "1"
		}
		assert.Equal(t, ErrInvalidSignedURL, signer.VerifySignedURL(tampered))
	})

	t.Run("foreign secret", func(t *testing.T) {
		conf := newTestStorageConfig("")
		conf.Storage.SecretKey = "other-secret"
		foreign := NewSigner(conf)
		assert.Equal(t, ErrInvalidSignedURL, foreign.VerifySignedURL(url))
	})

	t.Run("expired", func(t *testing.T) {
		NowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		staleURL := signer.SignedURL("docs/lesson.pdf")
		NowFunc = time.Now
		assert.Equal(t, ErrSignedURLExpired, signer.VerifySignedURL(staleURL))
	})

	t.Run("expiry boundary is exclusive", func(t *testing.T) {
		now := time.Now()
		NowFunc = func() time.Time { return now.Add(-time.Hour) }
		boundaryURL := signer.SignedURL("docs/lesson.pdf") // expires exactly now
		NowFunc = func() time.Time { return now }
		defer func() { NowFunc = time.Now }()
		assert.Equal(t, ErrSignedURLExpired, signer.VerifySignedURL(boundaryURL))
	})

	t.Run("not a signed url", func(t *testing.T) {
		assert.Equal(t, ErrInvalidSignedURL, signer.VerifySignedURL("https://elsewhere.example.com/docs/lesson.pdf?expires=1&signature=00"))
	})
}
