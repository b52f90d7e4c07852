package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"routa/internal/dispatch-service/core/domain/model"
	"routa/internal/dispatch-service/core/myerrors"
	"routa/internal/dispatch-service/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const orderColumns = `
	id, tracking_code, customer_id, driver_id,
	pickup_address, pickup_lat, pickup_lng, pickup_contact,
	dropoff_address, dropoff_lat, dropoff_lng, dropoff_contact,
	package_desc, package_weight, instructions, vehicle_class,
	distance_km, price, status,
	created_at, accepted_at, picked_up_at, delivered_at, cancelled_at`

type OrdersRepo struct {
	db *DB
}

func NewOrdersRepo(db *DB) ports.IOrdersRepo {
	return &OrdersRepo{db: db}
}

func (or *OrdersRepo) Create(ctx context.Context, m model.Order) error {
	q := `
	INSERT INTO orders (
		id, tracking_code, customer_id,
		pickup_address, pickup_lat, pickup_lng, pickup_contact,
		dropoff_address, dropoff_lat, dropoff_lng, dropoff_contact,
		package_desc, package_weight, instructions, vehicle_class,
		distance_km, price, status, created_at
	) VALUES (
		$1, $2, $3,
		$4, $5, $6, $7,
		$8, $9, $10, $11,
		$12, $13, $14, $15,
		$16, $17, $18, $19
	)`

	_, err := or.db.pool.Exec(ctx, q,
		m.ID, m.TrackingCode, m.CustomerID,
		m.Pickup.Address, m.Pickup.Coord.Latitude, m.Pickup.Coord.Longitude, m.Pickup.Contact,
		m.Dropoff.Address, m.Dropoff.Coord.Latitude, m.Dropoff.Coord.Longitude, m.Dropoff.Contact,
		m.PackageDesc, m.PackageWeight, m.Instructions, m.VehicleClass,
		m.DistanceKm, m.Price, string(m.Status), m.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 on the tracking_code index: a concurrent create took the same
		// daily sequence number. The caller recounts and retries.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "tracking") {
			return myerrors.ErrTrackingCodeTaken
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (or *OrdersRepo) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	row := or.db.pool.QueryRow(ctx, q, orderID)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, myerrors.ErrNotFound
		}
		return model.Order{}, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

// Claim is the race-resolving transition. The conditional UPDATE keyed on the
// current status is the whole locking story: the backing store serializes the
// writers, so first-writer-wins holds across service instances too.
func (or *OrdersRepo) Claim(ctx context.Context, orderID, driverID string) (model.Order, model.Outcome, error) {
	q := `
	UPDATE orders
	SET status = $3, driver_id = $2, accepted_at = now()
	WHERE id = $1 AND status = $4
	RETURNING ` + orderColumns

	row := or.db.pool.QueryRow(ctx, q, orderID, driverID, string(model.StatusAccepted), string(model.StatusPending))
	order, err := scanOrder(row)
	if err == nil {
		return order, model.OutcomeApplied, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Order{}, model.OutcomeNone, fmt.Errorf("claim order: %w", err)
	}

	// Lost the race, or the order never existed. Tell the loser which.
	if _, err := or.FindByID(ctx, orderID); err != nil {
		return model.Order{}, model.OutcomeNone, err
	}
	return model.Order{}, model.OutcomeInvalidState, nil
}

func (or *OrdersRepo) AdvanceStatus(ctx context.Context, orderID, driverID string, newStatus model.Status) (model.Order, model.Outcome, error) {
	tx, err := or.db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.Order{}, model.OutcomeNone, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // Safe rollback if not committed

	// Row lock serializes transitions per order id, which is also what makes
	// per-order notification ordering possible upstream.
	var (
		currentStr string
		assigned   *string
	)
	row := tx.QueryRow(ctx, `SELECT status, driver_id FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	if err := row.Scan(&currentStr, &assigned); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, model.OutcomeNone, myerrors.ErrNotFound
		}
		return model.Order{}, model.OutcomeNone, fmt.Errorf("lock order: %w", err)
	}

	if assigned == nil || *assigned != driverID {
		return model.Order{}, model.OutcomeUnauthorized, nil
	}

	next, ok := model.NextDeliveryStatus(model.Status(currentStr))
	if !ok || next != newStatus {
		return model.Order{}, model.OutcomeInvalidState, nil
	}

	q := `UPDATE orders SET status = $2`
	switch newStatus {
	case model.StatusPickedUp:
		q += `, picked_up_at = now()`
	case model.StatusDelivered:
		q += `, delivered_at = now()`
	}
	q += ` WHERE id = $1 RETURNING ` + orderColumns

	order, err := scanOrder(tx.QueryRow(ctx, q, orderID, string(newStatus)))
	if err != nil {
		return model.Order{}, model.OutcomeNone, fmt.Errorf("update status: %w", err)
	}

	if newStatus == model.StatusDelivered {
		// Same atomic unit as the status write.
		if _, err := tx.Exec(ctx,
			`UPDATE drivers SET total_deliveries = total_deliveries + 1 WHERE user_id = $1`,
			driverID,
		); err != nil {
			return model.Order{}, model.OutcomeNone, fmt.Errorf("increment deliveries: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Order{}, model.OutcomeNone, fmt.Errorf("commit: %w", err)
	}
	return order, model.OutcomeApplied, nil
}

func (or *OrdersRepo) Cancel(ctx context.Context, orderID, customerID string) (model.Order, model.Outcome, error) {
	q := `
	UPDATE orders
	SET status = $3, cancelled_at = now()
	WHERE id = $1 AND customer_id = $2 AND status IN ($4, $5)
	RETURNING ` + orderColumns

	row := or.db.pool.QueryRow(ctx, q, orderID, customerID,
		string(model.StatusCancelled), string(model.StatusPending), string(model.StatusAccepted))
	order, err := scanOrder(row)
	if err == nil {
		return order, model.OutcomeApplied, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Order{}, model.OutcomeNone, fmt.Errorf("cancel order: %w", err)
	}

	existing, err := or.FindByID(ctx, orderID)
	if err != nil {
		return model.Order{}, model.OutcomeNone, err
	}
	if existing.CustomerID != customerID {
		return model.Order{}, model.OutcomeUnauthorized, nil
	}
	return model.Order{}, model.OutcomeInvalidState, nil
}

func (or *OrdersRepo) ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`
	return or.list(ctx, q, customerID)
}

func (or *OrdersRepo) ListByDriver(ctx context.Context, driverID string) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE driver_id = $1 ORDER BY created_at DESC`
	return or.list(ctx, q, driverID)
}

func (or *OrdersRepo) ListPending(ctx context.Context) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 ORDER BY created_at DESC`
	return or.list(ctx, q, string(model.StatusPending))
}

func (or *OrdersRepo) CountCreatedToday(ctx context.Context) (int64, error) {
	q := `SELECT COUNT(*) FROM orders WHERE created_at::date = current_date`

	var count int64
	if err := or.db.pool.QueryRow(ctx, q).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

func (or *OrdersRepo) CancelStalePending(ctx context.Context, olderThan time.Duration) ([]string, error) {
	q := `
	UPDATE orders
	SET status = $1, cancelled_at = now()
	WHERE status = $2 AND created_at < $3
	RETURNING id`

	cutoff := time.Now().UTC().Add(-olderThan)
	rows, err := or.db.pool.Query(ctx, q, string(model.StatusCancelled), string(model.StatusPending), cutoff)
	if err != nil {
		return nil, fmt.Errorf("cancel stale orders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (or *OrdersRepo) list(ctx context.Context, q string, args ...any) ([]model.Order, error) {
	rows, err := or.db.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		m        model.Order
		driverID *string
	)
	err := row.Scan(
		&m.ID, &m.TrackingCode, &m.CustomerID, &driverID,
		&m.Pickup.Address, &m.Pickup.Coord.Latitude, &m.Pickup.Coord.Longitude, &m.Pickup.Contact,
		&m.Dropoff.Address, &m.Dropoff.Coord.Latitude, &m.Dropoff.Coord.Longitude, &m.Dropoff.Contact,
		&m.PackageDesc, &m.PackageWeight, &m.Instructions, &m.VehicleClass,
		&m.DistanceKm, &m.Price, (*string)(&m.Status),
		&m.CreatedAt, &m.AcceptedAt, &m.PickedUpAt, &m.DeliveredAt, &m.CancelledAt,
	)
	if err != nil {
		return model.Order{}, err
	}
	if driverID != nil {
		m.DriverID = *driverID
	}
	return m, nil
}
