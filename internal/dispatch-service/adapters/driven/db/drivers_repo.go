package db

import (
	"context"
	"errors"
	"fmt"

	"routa/internal/dispatch-service/core/domain/model"
	"routa/internal/dispatch-service/core/myerrors"
	"routa/internal/dispatch-service/core/ports"

	"github.com/jackc/pgx/v5"
)

type DriversRepo struct {
	db *DB
}

func NewDriversRepo(db *DB) ports.IDriversRepo {
	return &DriversRepo{db: db}
}

func (dr *DriversRepo) Create(ctx context.Context, m model.Driver) error {
	q := `
	INSERT INTO drivers (user_id, vehicle_class, is_approved, total_deliveries)
	VALUES ($1, $2, $3, $4)`

	_, err := dr.db.pool.Exec(ctx, q, m.UserID, m.VehicleClass, m.IsApproved, m.TotalDeliveries)
	if err != nil {
		return fmt.Errorf("insert driver: %w", err)
	}
	return nil
}

func (dr *DriversRepo) FindByUserID(ctx context.Context, userID string) (model.Driver, error) {
	q := `SELECT user_id, vehicle_class, is_approved, total_deliveries FROM drivers WHERE user_id = $1`

	var m model.Driver
	row := dr.db.pool.QueryRow(ctx, q, userID)
	err := row.Scan(&m.UserID, &m.VehicleClass, &m.IsApproved, &m.TotalDeliveries)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Driver{}, myerrors.ErrNotFound
		}
		return model.Driver{}, fmt.Errorf("find driver: %w", err)
	}
	return m, nil
}
