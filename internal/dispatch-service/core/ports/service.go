package ports

import (
	"context"

	"routa/internal/dispatch-service/core/domain/dto"
	"routa/internal/dispatch-service/core/domain/model"
)

type IDispatchService interface {
	CreateOrder(ctx context.Context, customerID string, req dto.CreateOrderRequestDto) (model.Order, error)
	AcceptOrder(ctx context.Context, orderID, driverID string) (model.Order, model.Outcome, error)
	AdvanceStatus(ctx context.Context, orderID, driverID string, newStatus model.Status) (model.Order, model.Outcome, error)
	CancelOrder(ctx context.Context, orderID, customerID string) (model.Order, model.Outcome, error)

	GetOrder(ctx context.Context, orderID string) (model.Order, error)
	GetMyOrders(ctx context.Context, customerID string) ([]model.Order, error)
	GetPendingOrders(ctx context.Context) ([]model.Order, error)
	GetDriverOrders(ctx context.Context, driverID string) ([]model.Order, error)

	SweepStalePending(ctx context.Context) error
}

type IAuthService interface {
	Register(ctx context.Context, req dto.RegisterRequestDto) (dto.RegisterResponseDto, error)
	Login(ctx context.Context, req dto.LoginRequestDto) (dto.LoginResponseDto, error)
}
