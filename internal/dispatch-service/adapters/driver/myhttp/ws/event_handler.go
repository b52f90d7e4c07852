package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	websocketdto "routa/internal/dispatch-service/core/domain/websocket_dto"

	"github.com/golang-jwt/jwt"
)

var errNotAuthenticated = errors.New("connection is not authenticated")

type EventHandler struct {
	jwtSecret string
}

func NewEventHandler(jwtSecret string) *EventHandler {
	return &EventHandler{
		jwtSecret: jwtSecret,
	}
}

// Authenticate validates the first-frame auth event and returns the identity
// the connection runs as.
func (eh *EventHandler) Authenticate(e websocketdto.Event) (userID, role string, err error) {
	var msg websocketdto.AuthMessage
	if err := json.Unmarshal(e.Data, &msg); err != nil {
		return "", "", err
	}

	tokenString := strings.TrimPrefix(msg.Token, "Bearer ")
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(eh.jwtSecret), nil
	})
	if err != nil {
		return "", "", err
	}
	if !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("cannot get claims")
	}

	userID, ok = claims["user_id"].(string)
	if !ok {
		return "", "", fmt.Errorf("cannot get user_id")
	}
	role, ok = claims["role"].(string)
	if !ok {
		return "", "", fmt.Errorf("cannot get role")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return "", "", fmt.Errorf("no exp claim")
	}
	if time.Now().Unix() > int64(exp) {
		return "", "", fmt.Errorf("token expired")
	}

	return userID, role, nil
}
