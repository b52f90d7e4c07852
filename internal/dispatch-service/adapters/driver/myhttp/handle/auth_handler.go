package handle

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"routa/internal/mylogger"

	"routa/internal/dispatch-service/core/domain/dto"
	"routa/internal/dispatch-service/core/myerrors"
	"routa/internal/dispatch-service/core/ports"
	"routa/internal/dispatch-service/core/services"
)

type AuthHandler struct {
	authService ports.IAuthService
	log         mylogger.Logger
}

func NewAuthHandler(as ports.IAuthService, log mylogger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: as,
		log:         log,
	}
}

func (ah *AuthHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.RegisterRequestDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := ah.authService.Register(r.Context(), req)
		if err != nil {
			switch {
			case errors.Is(err, myerrors.ErrEmailRegistered):
				JsonError(w, http.StatusConflict, err)
			case errors.Is(err, services.ErrUnknownRole) || isValidationError(err):
				JsonError(w, http.StatusBadRequest, err)
			default:
				JsonError(w, http.StatusInternalServerError, fmt.Errorf("server error"))
			}
			return
		}

		jsonResponse(w, http.StatusCreated, res)
	}
}

func (ah *AuthHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.LoginRequestDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := ah.authService.Login(r.Context(), req)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnknownCredentials):
				JsonError(w, http.StatusUnauthorized, err)
			case isValidationError(err):
				JsonError(w, http.StatusBadRequest, err)
			default:
				JsonError(w, http.StatusInternalServerError, fmt.Errorf("server error"))
			}
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}
