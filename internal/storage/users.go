package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gnomeshade/internal/core"
	"gnomeshade/internal/log"
)

const userColumns = "id, username, password_hash, full_name, counterparty_id, created_at, modified_at"

// UserRepository stores logins.
type UserRepository struct {
	db      DBTX
	dialect Dialect
	logger  *log.Logger
}

func scanUser(s interface{ Scan(...any) error }) (*core.User, error) {
	var u core.User
	var counterparty uuid.NullUUID
	if err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &counterparty, &u.CreatedAt, &u.ModifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CounterpartyID = counterparty.UUID
	return &u, nil
}

// Add inserts a user. Usernames are unique case-insensitively.
func (r *UserRepository) Add(ctx context.Context, u *core.User) error {
	var counterparty any
	if u.CounterpartyID != uuid.Nil {
		counterparty = u.CounterpartyID
	}
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)"),
		u.ID, strings.ToLower(u.Username), u.PasswordHash, u.FullName, counterparty, utc(u.CreatedAt), utc(u.ModifiedAt))
	if err != nil {
		return fmt.Errorf("insert user: %w", mapError(err))
	}
	r.logger.DebugContext(ctx, "Adding entity", log.FieldEntity, "users", log.FieldEntityID, u.ID.String())
	return nil
}

// SetCounterparty links the user to the counterparty representing them.
func (r *UserRepository) SetCounterparty(ctx context.Context, userID, counterpartyID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(
		"UPDATE users SET counterparty_id = ? WHERE id = ?"), counterpartyID, userID)
	if err != nil {
		return fmt.Errorf("update user: %w", mapError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// FindByID returns a user.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*core.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, r.dialect.Rebind(
		"SELECT "+userColumns+" FROM users WHERE id = ?"), id))
}

// FindByUsername returns a user by login name.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*core.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, r.dialect.Rebind(
		"SELECT "+userColumns+" FROM users WHERE username = ?"), strings.ToLower(username)))
}

// Count returns the number of users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
