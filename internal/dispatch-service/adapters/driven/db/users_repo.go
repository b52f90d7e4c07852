package db

import (
	"context"
	"errors"
	"fmt"

	"routa/internal/dispatch-service/core/domain/model"
	"routa/internal/dispatch-service/core/myerrors"
	"routa/internal/dispatch-service/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type UsersRepo struct {
	db *DB
}

func NewUsersRepo(db *DB) ports.IUsersRepo {
	return &UsersRepo{db: db}
}

func (ur *UsersRepo) Create(ctx context.Context, m model.User) error {
	q := `
	INSERT INTO users (id, name, email, phone, password_hash, role, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := ur.db.pool.Exec(ctx, q, m.ID, m.Name, m.Email, m.Phone, m.PasswordHash, m.Role, m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation on the email index
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return myerrors.ErrEmailRegistered
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (ur *UsersRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	q := `SELECT id, name, email, phone, password_hash, role, created_at FROM users WHERE email = $1`
	return ur.find(ctx, q, email)
}

func (ur *UsersRepo) FindByID(ctx context.Context, userID string) (model.User, error) {
	q := `SELECT id, name, email, phone, password_hash, role, created_at FROM users WHERE id = $1`
	return ur.find(ctx, q, userID)
}

func (ur *UsersRepo) find(ctx context.Context, q string, arg any) (model.User, error) {
	var m model.User
	row := ur.db.pool.QueryRow(ctx, q, arg)
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.PasswordHash, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, myerrors.ErrNotFound
		}
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return m, nil
}
