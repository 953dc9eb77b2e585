// Package auth validates API keys against SHA-256 hashes from configuration.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/tjfontaine/searchbot/internal/config"
)

// Authenticator validates API keys
type Authenticator struct {
	keys map[string]config.APIKeyConfig // keyhash -> key
}

// NewAuthenticator creates a new authenticator from configured key hashes.
// It returns nil when no keys are configured, which disables authentication.
func NewAuthenticator(keys []config.APIKeyConfig) *Authenticator {
	if len(keys) == 0 {
		return nil
	}

	auth := &Authenticator{
		keys: make(map[string]config.APIKeyConfig, len(keys)),
	}
	for _, key := range keys {
		auth.keys[strings.ToLower(key.KeyHash)] = key
	}

	return auth
}

// ValidateAPIKey validates an API key and returns the matching configuration entry
func (a *Authenticator) ValidateAPIKey(apiKey string) (config.APIKeyConfig, error) {
	keyHash := HashAPIKey(apiKey)

	key, ok := a.keys[keyHash]
	if !ok {
		return config.APIKeyConfig{}, fmt.Errorf("invalid API key")
	}

	// Constant-time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare([]byte(keyHash), []byte(strings.ToLower(key.KeyHash))) != 1 {
		return config.APIKeyConfig{}, fmt.Errorf("invalid API key")
	}

	return key, nil
}

// ExtractAPIKey extracts the API key from the Authorization header
func ExtractAPIKey(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", fmt.Errorf("missing Authorization header")
	}

	// Support "Bearer <key>" format
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid Authorization header format")
	}

	if strings.ToLower(parts[0]) != "bearer" {
		return "", fmt.Errorf("unsupported authorization scheme")
	}

	return parts[1], nil
}

// HashAPIKey creates a SHA-256 hash of an API key for storage
func HashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}
