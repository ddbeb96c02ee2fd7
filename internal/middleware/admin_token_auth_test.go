package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"component-graphql/internal/logging"
)

func newAdminHandler(t *testing.T, token string) http.Handler {
	t.Helper()
	mw, err := AdminTokenAuthMiddleware(token)
	require.NoError(t, err)
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("reloading")
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAdminTokenAuthMiddleware_MissingHeaderReturnsUnauthorized(t *testing.T) {
	handler := newAdminHandler(t, "secret-token")

	req := httptest.NewRequest(http.MethodPost, "/admin/reload-schema", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestAdminTokenAuthMiddleware_InvalidHeaderReturnsUnauthorized(t *testing.T) {
	handler := newAdminHandler(t, "secret-token")

	req := httptest.NewRequest(http.MethodPost, "/admin/reload-schema", nil)
	req.Header.Set(AdminTokenHeader, "wrong-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminTokenAuthMiddleware_ValidHeaderTagsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.Config{Format: "text", Output: &buf})
	handler := newAdminHandler(t, "secret-token")

	req := httptest.NewRequest(http.MethodPost, "/admin/reload-schema", nil)
	req.Header.Set(AdminTokenHeader, " secret-token ")
	req = req.WithContext(logging.WithLogger(req.Context(), logger))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, buf.String(), "auth_method=admin_token")
}

func TestAdminTokenAuthMiddleware_RequiresToken(t *testing.T) {
	_, err := AdminTokenAuthMiddleware("  ")
	assert.Error(t, err)
}
