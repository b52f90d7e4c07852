package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"routa/internal/mylogger"

	"routa/internal/dispatch-service/core/domain/dto"
	"routa/internal/dispatch-service/core/domain/model"
	"routa/internal/dispatch-service/core/myerrors"
	"routa/internal/dispatch-service/core/ports"
	"routa/internal/dispatch-service/core/pricing"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinNameLen = 1
	MaxNameLen = 100

	MinEmailLen = 5
	MaxEmailLen = 100

	MinPasswordLen = 5
	MaxPasswordLen = 50

	HashFactor = 10

	TokenTTL = time.Hour * 24
)

var (
	ErrUnknownCredentials = errors.New("unknown email or password")
	ErrUnknownRole        = errors.New("unknown role")
)

var allowedRoles = map[string]bool{
	model.RoleCustomer: true,
	model.RoleDriver:   true,
}

type AuthService struct {
	mylog       mylogger.Logger
	usersRepo   ports.IUsersRepo
	driversRepo ports.IDriversRepo
	quoter      *pricing.Quoter
	jwtSecret   string
}

func NewAuthService(
	log mylogger.Logger,
	usersRepo ports.IUsersRepo,
	driversRepo ports.IDriversRepo,
	quoter *pricing.Quoter,
	jwtSecret string,
) ports.IAuthService {
	return &AuthService{
		mylog:       log,
		usersRepo:   usersRepo,
		driversRepo: driversRepo,
		quoter:      quoter,
		jwtSecret:   jwtSecret,
	}
}

func (as *AuthService) Register(ctx context.Context, req dto.RegisterRequestDto) (dto.RegisterResponseDto, error) {
	log := as.mylog.Action("Register")

	if err := validateRegistration(req); err != nil {
		return dto.RegisterResponseDto{}, err
	}

	role := strings.ToUpper(*req.Role)
	if !allowedRoles[role] {
		return dto.RegisterResponseDto{}, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}

	var vehicleClass string
	if role == model.RoleDriver {
		if err := validateVehicleClass(req.VehicleClass, as.quoter); err != nil {
			return dto.RegisterResponseDto{}, fmt.Errorf("invalid vehicle class: %w", err)
		}
		vehicleClass = strings.ToUpper(*req.VehicleClass)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), HashFactor)
	if err != nil {
		log.Error("cannot hash password", err)
		return dto.RegisterResponseDto{}, err
	}

	user := model.User{
		ID:           uuid.NewString(),
		Name:         *req.Name,
		Email:        strings.ToLower(*req.Email),
		Phone:        *req.Phone,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	rctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	if err := as.usersRepo.Create(rctx, user); err != nil {
		if errors.Is(err, myerrors.ErrEmailRegistered) {
			return dto.RegisterResponseDto{}, err
		}
		log.Error("cannot create user", err)
		return dto.RegisterResponseDto{}, err
	}

	if role == model.RoleDriver {
		// New drivers start unapproved, the approval workflow lives outside
		// this service.
		driver := model.Driver{
			UserID:       user.ID,
			VehicleClass: vehicleClass,
		}
		if err := as.driversRepo.Create(rctx, driver); err != nil {
			log.Error("cannot create driver profile", err)
			return dto.RegisterResponseDto{}, err
		}
	}

	log.Info("user registered", "user_id", user.ID, "role", role)
	return dto.RegisterResponseDto{UserID: user.ID, Role: role}, nil
}

func (as *AuthService) Login(ctx context.Context, req dto.LoginRequestDto) (dto.LoginResponseDto, error) {
	log := as.mylog.Action("Login")

	if err := validateLogin(req); err != nil {
		return dto.LoginResponseDto{}, err
	}

	rctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	user, err := as.usersRepo.FindByEmail(rctx, strings.ToLower(*req.Email))
	if err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			return dto.LoginResponseDto{}, ErrUnknownCredentials
		}
		log.Error("cannot look up user", err)
		return dto.LoginResponseDto{}, err
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(*req.Password)) != nil {
		return dto.LoginResponseDto{}, ErrUnknownCredentials
	}

	token, err := as.issueToken(user)
	if err != nil {
		log.Error("cannot sign token", err)
		return dto.LoginResponseDto{}, err
	}

	log.Info("user logged in", "user_id", user.ID)
	return dto.LoginResponseDto{Token: token, UserID: user.ID, Role: user.Role}, nil
}

func (as *AuthService) issueToken(user model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecret))
}

func validateRegistration(req dto.RegisterRequestDto) error {
	if req.Name == nil || req.Email == nil || req.Phone == nil || req.Password == nil || req.Role == nil {
		return ErrEmptyField
	}
	if err := validateName(*req.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	if err := validateEmail(*req.Email); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	if *req.Phone == "" {
		return fmt.Errorf("invalid phone: %w", ErrEmptyField)
	}
	if err := validatePassword(*req.Password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}
	return nil
}

func validateLogin(req dto.LoginRequestDto) error {
	if req.Email == nil || req.Password == nil {
		return ErrEmptyField
	}
	if err := validateEmail(*req.Email); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	if err := validatePassword(*req.Password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return ErrEmptyField
	}
	if len(name) < MinNameLen || len(name) > MaxNameLen {
		return fmt.Errorf("must be in range [%d, %d]", MinNameLen, MaxNameLen)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmptyField
	}
	if len(email) < MinEmailLen || len(email) > MaxEmailLen {
		return fmt.Errorf("must be in range [%d, %d]", MinEmailLen, MaxEmailLen)
	}
	if strings.Count(email, "@") != 1 {
		return fmt.Errorf("must contain exactly one @: %s", email)
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrEmptyField
	}
	if len(password) < MinPasswordLen || len(password) > MaxPasswordLen {
		return fmt.Errorf("must be in range [%d, %d]", MinPasswordLen, MaxPasswordLen)
	}
	return nil
}
