package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedChain(roles ...string) http.Handler {
	auth := NewAuthenticator(testSecret)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if len(roles) == 0 {
		return auth.Authenticate(next)
	}
	return auth.Authenticate(Authorize(roles...)(next))
}

func TestAuthenticate(t *testing.T) {
	validClaims := jwt.MapClaims{
		"role": RoleAdmin,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "valid token",
			authHeader: "Bearer " + signToken(t, testSecret, validClaims),
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer token",
			authHeader: "Basic abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			authHeader: "Bearer " + signToken(t, "other-secret", validClaims),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"role": RoleAdmin,
				"exp":  time.Now().Add(-time.Hour).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
	}

	handler := protectedChain()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				r.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthorize(t *testing.T) {
	handler := protectedChain(RoleAdmin)

	t.Run("admin role passes", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"role": RoleAdmin,
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("other role is forbidden", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"role": "spectator",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing role claim is forbidden", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		require.Equal(t, http.StatusForbidden, w.Code)
	})
}
