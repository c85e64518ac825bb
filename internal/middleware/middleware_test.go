package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"modakarina-be/internal/user"
	"modakarina-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("MissingToken", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := utils.GetUserIDFromContext(r.Context())
			assert.False(t, ok, "context should not contain user id")
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/products", nil)
		w := httptest.NewRecorder()

		AuthMiddleware(next).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		AuthMiddleware(http.NotFoundHandler()).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ValidToken", func(t *testing.T) {
		token, err := user.GenerateJWT(1, "maria@example.com", user.RoleUser)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, uint(1), userID)
			assert.Equal(t, "maria@example.com", utils.GetUserEmailFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		})

		AuthMiddleware(next).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("NonBearerSchemeIsAnonymous", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/products", nil)
		req.Header.Set("Authorization", "Basic user:pass")
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := utils.GetUserIDFromContext(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		})

		AuthMiddleware(next).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Anonymous", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders", nil)
		w := httptest.NewRecorder()

		RequireAuth(next).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Authenticated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders", nil)
		ctx := utils.SetUserContext(req.Context(), 1, "maria@example.com", "USER")
		w := httptest.NewRecorder()

		RequireAuth(next).ServeHTTP(w, req.WithContext(ctx))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("RegularUser", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/products", nil)
		ctx := utils.SetUserContext(req.Context(), 1, "maria@example.com", "USER")
		w := httptest.NewRecorder()

		RequireAdmin(next).ServeHTTP(w, req.WithContext(ctx))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/products", nil)
		ctx := utils.SetUserContext(req.Context(), 2, "admin@example.com", "ADMIN")
		w := httptest.NewRecorder()

		RequireAdmin(next).ServeHTTP(w, req.WithContext(ctx))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Anonymous", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/products", nil)
		w := httptest.NewRecorder()

		RequireAdmin(next).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimitMiddleware(next)

	t.Run("StrictTierExhausts", func(t *testing.T) {
		var last int
		for i := 0; i < burstStrict+1; i++ {
			req := httptest.NewRequest("POST", "/webhook/mercadopago", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			last = w.Code
		}
		assert.Equal(t, http.StatusTooManyRequests, last)
	})

	t.Run("SeparateIdentities", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/products", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("UserBucketsAreIndependentOfIP", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest("GET", "/orders", nil)
			req.RemoteAddr = "10.0.0.3:1234"
			ctx := utils.SetUserContext(req.Context(), uint(100+i), "u@example.com", "USER")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req.WithContext(ctx))
			assert.Equal(t, http.StatusOK, w.Code, fmt.Sprintf("user %d", 100+i))
		}
	})
}
