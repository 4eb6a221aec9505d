package auth

import (
	"context"
	"fmt"
	"net/http"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/config"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
	"ms-transactions/internal/utils"
)

type contextKey string

const actorKey contextKey = "actor"

// NewVerifier picks OIDC when an issuer is configured and HS256 otherwise.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (Verifier, error) {
	if cfg.OIDCIssuer != "" {
		return NewOIDCVerifier(ctx, cfg.OIDCIssuer)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("either OIDC_ISSUER or JWT_SECRET must be set")
	}
	return NewHMACVerifier(cfg.JWTSecret), nil
}

// Middleware authenticates the request and stores the caller for the handler.
// Handlers read it with ActorFrom and pass it explicitly into services.
func Middleware(v Verifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteError(w, r, log, apperr.Unauthorized(err.Error()))
				return
			}

			actor, err := v.Verify(r.Context(), rawToken)
			if err != nil {
				utils.WriteError(w, r, log, apperr.Unauthorized("invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role is not listed.
func RequireRole(log *logger.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r)
			if !ok {
				utils.WriteError(w, r, log, apperr.Unauthorized("authentication required"))
				return
			}
			for _, role := range roles {
				if actor.Is(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.WriteError(w, r, log, apperr.Forbidden("You are not allowed to perform this action"))
		})
	}
}

// ActorFrom returns the caller stored by Middleware.
func ActorFrom(r *http.Request) (models.Actor, bool) {
	actor, ok := r.Context().Value(actorKey).(models.Actor)
	return actor, ok
}

// WithActor attaches actor to ctx. Tests use it to bypass token parsing.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}
