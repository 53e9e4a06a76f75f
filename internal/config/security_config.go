package config

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
)

const sessionSecretVar = "SESSION_SECRET"

type SecurityConfig interface {
	GetSessionSecret() string
}

type Security struct{}

var _ SecurityConfig = Security{}

var (
	fallbackSecretOnce sync.Once
	fallbackSecret     string
)

// GetSessionSecret returns the secret used to sign the session cookie. When
// none is configured a random per-process secret is generated instead of
// failing startup: in-flight handshakes do not survive a restart anyway, so
// an ephemeral secret loses nothing.
func (Security) GetSessionSecret() string {
	if secret := GetEnv(sessionSecretVar, ""); secret != "" {
		return secret
	}
	fallbackSecretOnce.Do(func() {
		b := make([]byte, 32)
		rand.Read(b)
		fallbackSecret = base64.RawURLEncoding.EncodeToString(b)
	})
	return fallbackSecret
}
