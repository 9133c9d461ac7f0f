package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"leafscan/internal/domain"
)

// SQLiteUserRepository implementa UserRepository sobre modernc.org/sqlite.
type SQLiteUserRepository struct {
	db *sql.DB
}

func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

func (r *SQLiteUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, salt, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Salt,
		user.CreatedAt,
	)
	if isSQLiteEmailViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, email, password_hash, salt, created_at
		FROM users
		WHERE id = ?
	`
	return r.scanOne(ctx, query, id)
}

func (r *SQLiteUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
		SELECT id, email, password_hash, salt, created_at
		FROM users
		WHERE email = ?
	`
	return r.scanOne(ctx, query, email)
}

func (r *SQLiteUserRepository) scanOne(ctx context.Context, query string, arg string) (domain.User, error) {
	var (
		u    domain.User
		salt sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&salt,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	u.Salt = salt.String
	return u, nil
}

// isSQLiteEmailViolation reconoce "UNIQUE constraint failed: users.email".
func isSQLiteEmailViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, "users.email")
}
