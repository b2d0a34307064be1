package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/auth"
	"github.com/iho/leaveledger/internal/infrastructure/logger"
)

type contextKey string

const actorContextKey contextKey = "actor"

// Headers identifying the actor when token authentication is disabled.
const (
	ActorIDHeader    = "X-Actor-ID"
	ActorOrgHeader   = "X-Actor-Org"
	ActorRolesHeader = "X-Actor-Roles"
)

// WithActor returns ctx carrying actor, and tags the request logger with
// the actor's ID.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	ctx = context.WithValue(ctx, actorContextKey, actor)
	return logger.WithActorID(ctx, actor.ID)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(domain.Actor)
	return actor, ok
}

// AuthMiddleware admits requests carrying a valid bearer token issued by
// jwtManager and puts the token's actor on the context.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				unauthorized(w, err.Error())
				return
			}

			claims, err := jwtManager.Verify(token)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), claims.Actor())))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid authorization header format")
	}
	return strings.TrimSpace(token), nil
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="leaveledger"`)
	writeError(w, http.StatusUnauthorized, msg)
}

// HeaderActor trusts the X-Actor-* headers set by an upstream gateway. It is
// used when token authentication is disabled.
func HeaderActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(ActorIDHeader))
		if id == "" {
			unauthorized(w, "missing "+ActorIDHeader+" header")
			return
		}
		if id == domain.SystemActorID {
			unauthorized(w, "reserved actor id")
			return
		}

		actor := domain.Actor{
			ID:    id,
			OrgID: strings.TrimSpace(r.Header.Get(ActorOrgHeader)),
			Roles: splitRoles(r.Header.Get(ActorRolesHeader)),
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// RequireRole admits actors holding any of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				unauthorized(w, "unauthorized")
				return
			}

			for _, role := range roles {
				if actor.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

func splitRoles(header string) []string {
	var roles []string
	for _, role := range strings.Split(header, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}
