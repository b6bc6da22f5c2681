package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token := NewToken("secret", 42, time.Hour)
	uid, ok := ParseToken("secret", token)
	require.True(t, ok)
	require.Equal(t, uint(42), uid)
}

func TestTokenRejections(t *testing.T) {
	token := NewToken("secret", 42, time.Hour)

	_, ok := ParseToken("other-secret", token)
	require.False(t, ok, "wrong secret")

	_, ok = ParseToken("secret", token+"x")
	require.False(t, ok, "tampered signature")

	_, ok = ParseToken("secret", "not-a-token")
	require.False(t, ok, "malformed")

	expired := NewToken("secret", 42, -time.Minute)
	_, ok = ParseToken("secret", expired)
	require.False(t, ok, "expired")
}

func TestMiddlewareAndRequireAuth(t *testing.T) {
	SetUserVerifier(nil)
	handler := Middleware("secret")(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, uint(7), uid)
		w.WriteHeader(http.StatusNoContent)
	})))

	// No header → 401.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token → 401.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token reaches the handler with the user id in context.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+NewToken("secret", 7, time.Hour))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireAuthConsultsVerifier(t *testing.T) {
	SetUserVerifier(func(_ context.Context, uid uint) bool { return false })
	t.Cleanup(func() { SetUserVerifier(nil) })

	handler := Middleware("secret")(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+NewToken("secret", 7, time.Hour))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
