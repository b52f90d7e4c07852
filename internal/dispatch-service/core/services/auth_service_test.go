package services_test

import (
	"context"
	"testing"

	"routa/internal/config"
	"routa/internal/mylogger"

	"routa/internal/dispatch-service/core/domain/dto"
	"routa/internal/dispatch-service/core/domain/model"
	"routa/internal/dispatch-service/core/myerrors"
	"routa/internal/dispatch-service/core/ports"
	"routa/internal/dispatch-service/core/pricing"
	"routa/internal/dispatch-service/core/services"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthFixture(t *testing.T) (ports.IAuthService, *memStore) {
	t.Helper()

	log, err := mylogger.New("ERROR")
	require.NoError(t, err)

	store := newMemStore()
	quoter := pricing.NewQuoter(&config.Pricingconfig{
		Classes: map[string]config.Rateconfig{
			"BIKE": {Base: 300, PerKm: 70},
			"CAR":  {Base: 500, PerKm: 100},
		},
	})

	return services.NewAuthService(log, usersView{store}, driversView{store}, quoter, testSecret), store
}

func registerReq(role string) dto.RegisterRequestDto {
	req := dto.RegisterRequestDto{
		Name:     strPtr("Ada Obi"),
		Email:    strPtr("ada@example.com"),
		Phone:    strPtr("+2348011122233"),
		Password: strPtr("s3cret-pw"),
		Role:     strPtr(role),
	}
	if role == model.RoleDriver {
		req.VehicleClass = strPtr("BIKE")
	}
	return req
}

func TestRegisterCustomer(t *testing.T) {
	service, store := newAuthFixture(t)

	res, err := service.Register(context.Background(), registerReq(model.RoleCustomer))
	require.NoError(t, err)
	assert.NotEmpty(t, res.UserID)
	assert.Equal(t, model.RoleCustomer, res.Role)

	user, err := store.FindUserByID(context.Background(), res.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	// The raw password never hits storage.
	assert.NotContains(t, string(user.PasswordHash), "s3cret-pw")

	// Customers get no driver profile.
	_, err = store.FindByUserID(context.Background(), res.UserID)
	assert.ErrorIs(t, err, myerrors.ErrNotFound)
}

func TestRegisterDriver(t *testing.T) {
	service, store := newAuthFixture(t)

	res, err := service.Register(context.Background(), registerReq(model.RoleDriver))
	require.NoError(t, err)

	driver, err := store.FindByUserID(context.Background(), res.UserID)
	require.NoError(t, err)
	assert.Equal(t, "BIKE", driver.VehicleClass)
	assert.False(t, driver.IsApproved)
	assert.Zero(t, driver.TotalDeliveries)
}

func TestRegisterDriverRequiresVehicleClass(t *testing.T) {
	service, _ := newAuthFixture(t)

	req := registerReq(model.RoleDriver)
	req.VehicleClass = nil
	_, err := service.Register(context.Background(), req)
	assert.ErrorIs(t, err, services.ErrEmptyField)

	req.VehicleClass = strPtr("ROCKET")
	_, err = service.Register(context.Background(), req)
	assert.ErrorIs(t, err, pricing.ErrUnknownVehicleClass)
}

func TestRegisterValidation(t *testing.T) {
	service, _ := newAuthFixture(t)

	req := registerReq(model.RoleCustomer)
	req.Email = nil
	_, err := service.Register(context.Background(), req)
	assert.ErrorIs(t, err, services.ErrEmptyField)

	req = registerReq(model.RoleCustomer)
	req.Email = strPtr("not-an-email")
	_, err = service.Register(context.Background(), req)
	assert.Error(t, err)

	req = registerReq(model.RoleCustomer)
	req.Password = strPtr("abc")
	_, err = service.Register(context.Background(), req)
	assert.Error(t, err)

	req = registerReq(model.RoleCustomer)
	req.Role = strPtr("ADMIN")
	_, err = service.Register(context.Background(), req)
	assert.ErrorIs(t, err, services.ErrUnknownRole)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Register(context.Background(), registerReq(model.RoleCustomer))
	require.NoError(t, err)

	_, err = service.Register(context.Background(), registerReq(model.RoleCustomer))
	assert.ErrorIs(t, err, myerrors.ErrEmailRegistered)
}

func TestLogin(t *testing.T) {
	service, _ := newAuthFixture(t)

	registered, err := service.Register(context.Background(), registerReq(model.RoleCustomer))
	require.NoError(t, err)

	res, err := service.Login(context.Background(), dto.LoginRequestDto{
		Email:    strPtr("ada@example.com"),
		Password: strPtr("s3cret-pw"),
	})
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, res.UserID)
	assert.Equal(t, model.RoleCustomer, res.Role)

	// The token carries the identity claims the middleware reads back.
	token, err := jwt.Parse(res.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, registered.UserID, claims["user_id"])
	assert.Equal(t, model.RoleCustomer, claims["role"])
	assert.NotNil(t, claims["exp"])
}

func TestLoginWrongPassword(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Register(context.Background(), registerReq(model.RoleCustomer))
	require.NoError(t, err)

	_, err = service.Login(context.Background(), dto.LoginRequestDto{
		Email:    strPtr("ada@example.com"),
		Password: strPtr("wrong-pw"),
	})
	assert.ErrorIs(t, err, services.ErrUnknownCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Login(context.Background(), dto.LoginRequestDto{
		Email:    strPtr("nobody@example.com"),
		Password: strPtr("whatever"),
	})
	assert.ErrorIs(t, err, services.ErrUnknownCredentials)
}

func TestLoginIsCaseInsensitiveOnEmail(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Register(context.Background(), registerReq(model.RoleCustomer))
	require.NoError(t, err)

	_, err = service.Login(context.Background(), dto.LoginRequestDto{
		Email:    strPtr("ADA@example.com"),
		Password: strPtr("s3cret-pw"),
	})
	assert.NoError(t, err)
}
