package middleware

import (
	"context"
	"net/http"

	"raffler/auth"
	"raffler/models"
	"raffler/response"
)

type contextKey string

const actorContextKey contextKey = "actor"

// Authenticate resolves the calling actor and stores it on the request
// context. Requests without a resolvable actor are rejected with 401.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.ActorFromRequest(r)
		if err != nil {
			response.Unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), actorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromContext returns the actor stored by Authenticate
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(models.Actor)
	return actor, ok
}
