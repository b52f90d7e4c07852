package ports

import (
	"context"
	"time"

	"routa/internal/dispatch-service/core/domain/model"
)

// IOrdersRepo owns the persisted order rows and their status field. Every
// transition is an atomic conditional update at the storage layer, so the
// first-writer-wins guarantee holds across service instances, not just
// goroutines.
type IOrdersRepo interface {
	Create(ctx context.Context, order model.Order) error

	FindByID(ctx context.Context, orderID string) (model.Order, error)

	// Claim moves PENDING -> ACCEPTED and sets the driver. At most one
	// concurrent caller gets OutcomeApplied, every other gets
	// OutcomeInvalidState.
	Claim(ctx context.Context, orderID, driverID string) (model.Order, model.Outcome, error)

	// AdvanceStatus applies the single legal successor transition for the
	// assigned driver, stamping picked_up_at/delivered_at and bumping the
	// driver's delivery counter in the same transaction on DELIVERED.
	AdvanceStatus(ctx context.Context, orderID, driverID string, newStatus model.Status) (model.Order, model.Outcome, error)

	// Cancel moves PENDING|ACCEPTED -> CANCELLED for the owning customer.
	Cancel(ctx context.Context, orderID, customerID string) (model.Order, model.Outcome, error)

	ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error)
	ListByDriver(ctx context.Context, driverID string) ([]model.Order, error)
	ListPending(ctx context.Context) ([]model.Order, error)

	// CountCreatedToday feeds the daily tracking-code sequence.
	CountCreatedToday(ctx context.Context) (int64, error)

	// CancelStalePending cancels PENDING orders older than the TTL and
	// returns the ids it touched.
	CancelStalePending(ctx context.Context, olderThan time.Duration) ([]string, error)
}

type IUsersRepo interface {
	Create(ctx context.Context, user model.User) error
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, userID string) (model.User, error)
}

type IDriversRepo interface {
	Create(ctx context.Context, driver model.Driver) error
	FindByUserID(ctx context.Context, userID string) (model.Driver, error)
}
