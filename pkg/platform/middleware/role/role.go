// Package role gates routes on the caller role resolved by the auth middleware.
package role

import (
	"log/slog"
	"net/http"
	"slices"

	id "lms/pkg/domain"
	request "lms/pkg/platform/middleware/request"
	"lms/pkg/requestcontext"
)

// Require lets the request through only when the caller holds one of the
// allowed roles. It must run after auth.RequireAuth.
func Require(logger *slog.Logger, allowed ...id.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			caller := requestcontext.Role(ctx)
			if !slices.Contains(allowed, caller) {
				logger.WarnContext(ctx, "forbidden - role not permitted",
					"role", string(caller),
					"path", r.URL.Path,
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"insufficient role"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
