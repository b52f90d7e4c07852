package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"routa/internal/dispatch-service/adapters/driver/myhttp/middleware"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1",
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, requiredRole, authHeader string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var seen *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		w.WriteHeader(http.StatusOK)
	})

	am := middleware.NewAuthMiddleware(testSecret)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/my-orders", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	am.Wrap(requiredRole, next).ServeHTTP(rec, req)
	return rec, seen
}

func TestWrapSetsIdentityHeaders(t *testing.T) {
	rec, seen := doRequest(t, "CUSTOMER", "Bearer "+signToken(t, "CUSTOMER"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u-1", seen.Header.Get("X-UserId"))
	assert.Equal(t, "CUSTOMER", seen.Header.Get("X-UserRole"))
}

func TestWrapAnyRole(t *testing.T) {
	rec, _ := doRequest(t, "", "Bearer "+signToken(t, "DRIVER"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWrapMissingToken(t *testing.T) {
	rec, seen := doRequest(t, "CUSTOMER", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestWrapBadToken(t *testing.T) {
	rec, seen := doRequest(t, "CUSTOMER", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestWrapRoleMismatch(t *testing.T) {
	rec, seen := doRequest(t, "DRIVER", "Bearer "+signToken(t, "CUSTOMER"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, seen)
}
