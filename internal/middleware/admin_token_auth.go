package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"component-graphql/internal/logging"
)

// AdminTokenHeader carries the shared secret for admin endpoints.
const AdminTokenHeader = "X-Admin-Token"

// AdminTokenAuthMiddleware rejects requests whose AdminTokenHeader does not
// match token.
func AdminTokenAuthMiddleware(token string) (func(http.Handler) http.Handler, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("admin auth token is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := strings.TrimSpace(r.Header.Get(AdminTokenHeader))
			if !constantTimeTokenMatch(provided, token) {
				logging.FromContext(r.Context()).Warn("admin request rejected",
					slog.String("path", r.URL.Path),
					slog.Bool("token_present", provided != ""),
				)
				writeUnauthorized(w)
				return
			}

			reqLogger := logging.FromContext(r.Context()).WithFields(slog.String("auth_method", "admin_token"))
			next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), reqLogger)))
		})
	}, nil
}

// constantTimeTokenMatch hashes both sides so comparison time does not leak length.
func constantTimeTokenMatch(provided string, expected string) bool {
	providedDigest := sha256.Sum256([]byte(provided))
	expectedDigest := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(providedDigest[:], expectedDigest[:]) == 1
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprint(w, `{"error":"unauthorized"}`)
}
