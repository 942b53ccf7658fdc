package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"aims/pkg/requestcontext"
)

// ActorHeader names the reviewer performing an import. It is recorded in the
// audit trail and import log, not used for authorization.
const ActorHeader = "X-Actor"

// RequireToken guards the import endpoints with a static bearer token. An
// empty configured token disables the check, which keeps local development
// frictionless.
func RequireToken(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if actor := r.Header.Get(ActorHeader); actor != "" {
				ctx = requestcontext.WithUserID(ctx, actor)
			}
			if token == "" {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				logger.WarnContext(ctx, "unauthorized access",
					"path", r.URL.Path,
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
