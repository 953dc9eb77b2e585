package server

import (
	"context"
	"net/http"

	"github.com/tjfontaine/searchbot/internal/auth"
	"github.com/tjfontaine/searchbot/internal/config"
)

type apiKeyContextKey struct{}

// AuthMiddleware validates API keys from the Authorization header (Bearer
// token format). If the authenticator is nil, the middleware is a no-op.
func AuthMiddleware(authenticator *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if authenticator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, err := auth.ExtractAPIKey(r)
			if err != nil {
				AddError(r.Context(), err)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			key, err := authenticator.ValidateAPIKey(apiKey)
			if err != nil {
				AddError(r.Context(), err)
				writeError(w, http.StatusUnauthorized, "Invalid API key")
				return
			}

			AddLogField(r.Context(), "api_key", key.Description)
			ctx := context.WithValue(r.Context(), apiKeyContextKey{}, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAPIKey retrieves the authenticated key from context.
func GetAPIKey(ctx context.Context) (config.APIKeyConfig, bool) {
	key, ok := ctx.Value(apiKeyContextKey{}).(config.APIKeyConfig)
	return key, ok
}
