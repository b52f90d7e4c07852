package ws

import (
	"encoding/json"
	"testing"
	"time"

	websocketdto "routa/internal/dispatch-service/core/domain/websocket_dto"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1",
		"role":    "DRIVER",
		"exp":     exp.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authEvent(t *testing.T, token string) websocketdto.Event {
	t.Helper()
	data, err := json.Marshal(websocketdto.AuthMessage{Token: token})
	require.NoError(t, err)
	return websocketdto.Event{Type: websocketdto.EventAuth, Data: data}
}

func TestAuthenticate(t *testing.T) {
	eh := NewEventHandler(testSecret)

	token := signToken(t, testSecret, time.Now().Add(time.Hour))
	userID, role, err := eh.Authenticate(authEvent(t, token))
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, "DRIVER", role)
}

func TestAuthenticateBearerPrefix(t *testing.T) {
	eh := NewEventHandler(testSecret)

	token := signToken(t, testSecret, time.Now().Add(time.Hour))
	userID, _, err := eh.Authenticate(authEvent(t, "Bearer "+token))
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
}

func TestAuthenticateWrongSecret(t *testing.T) {
	eh := NewEventHandler(testSecret)

	token := signToken(t, "other-secret", time.Now().Add(time.Hour))
	_, _, err := eh.Authenticate(authEvent(t, token))
	assert.Error(t, err)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	eh := NewEventHandler(testSecret)

	token := signToken(t, testSecret, time.Now().Add(-time.Hour))
	_, _, err := eh.Authenticate(authEvent(t, token))
	assert.Error(t, err)
}

func TestAuthenticateGarbage(t *testing.T) {
	eh := NewEventHandler(testSecret)

	_, _, err := eh.Authenticate(authEvent(t, "not-a-jwt"))
	assert.Error(t, err)

	_, _, err = eh.Authenticate(websocketdto.Event{Type: websocketdto.EventAuth, Data: []byte(`{`)})
	assert.Error(t, err)
}
