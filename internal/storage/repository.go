package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gnomeshade/internal/core"
	"gnomeshade/internal/log"
)

var headerColumns = []string{
	"id", "created_at", "created_by_user_id", "owner_id",
	"modified_at", "modified_by_user_id", "deleted_at", "deleted_by_user_id",
}

// mapping binds a domain type to its table. scan returns destinations and
// args returns values, both in columns order.
type mapping[T any] struct {
	table   string
	columns []string
	header  func(*T) *core.Entity
	scan    func(*T) []any
	args    func(*T) []any
}

// Repository is the generic base every owned table shares. It renders the
// select, insert, update and soft-delete statements once from the mapping.
type Repository[T any] struct {
	db      DBTX
	dialect Dialect
	logger  *log.Logger
	m       mapping[T]

	selectSQL    string
	selectAnySQL string
	insertSQL    string
	updateSQL    string
	deleteSQL    string
}

func newRepository[T any](db DBTX, dialect Dialect, logger *log.Logger, m mapping[T]) *Repository[T] {
	all := append(append([]string{}, headerColumns...), m.columns...)

	sets := make([]string, 0, len(m.columns)+3)
	sets = append(sets, "owner_id = ?", "modified_at = ?", "modified_by_user_id = ?")
	for _, c := range m.columns {
		sets = append(sets, c+" = ?")
	}

	return &Repository[T]{
		db:      db,
		dialect: dialect,
		logger:  logger,
		m:       m,

		selectSQL:    fmt.Sprintf("SELECT %s FROM %s WHERE deleted_at IS NULL", strings.Join(all, ", "), m.table),
		selectAnySQL: fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", strings.Join(all, ", "), m.table),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			m.table, strings.Join(all, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(all)), ", ")),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND owner_id = ? AND deleted_at IS NULL",
			m.table, strings.Join(sets, ", ")),
		deleteSQL: fmt.Sprintf("UPDATE %s SET deleted_at = ?, deleted_by_user_id = ? WHERE id = ? AND owner_id = ? AND deleted_at IS NULL",
			m.table),
	}
}

// WithTx returns a copy of the repository bound to tx.
func (r *Repository[T]) WithTx(tx DBTX) *Repository[T] {
	c := *r
	c.db = tx
	return &c
}

func (r *Repository[T]) scanRow(s interface{ Scan(...any) error }) (T, error) {
	var v T
	h := r.m.header(&v)
	dest := append([]any{
		&h.ID, &h.CreatedAt, &h.CreatedByUserID, &h.OwnerID,
		&h.ModifiedAt, &h.ModifiedByUserID, &h.DeletedAt, &h.DeletedByUserID,
	}, r.m.scan(&v)...)
	if err := s.Scan(dest...); err != nil {
		return v, err
	}
	return v, nil
}

// query runs the select with an extra condition and trailing clause.
func (r *Repository[T]) query(ctx context.Context, where string, tail string, args ...any) ([]T, error) {
	q := r.selectSQL
	if where != "" {
		q += " AND " + where
	}
	if tail != "" {
		q += " " + tail
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.m.table, mapError(err))
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.m.table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.m.table, err)
	}
	return out, nil
}

func (r *Repository[T]) one(ctx context.Context, where string, args ...any) (*T, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(r.selectSQL+" AND "+where), args...)
	v, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", r.m.table, mapError(err))
	}
	return &v, nil
}

// Get lists every live row owned by ownerID, oldest first.
func (r *Repository[T]) Get(ctx context.Context, ownerID uuid.UUID) ([]T, error) {
	return r.query(ctx, "owner_id = ?", "ORDER BY created_at, id", ownerID)
}

// FindByID returns the row if it exists and is owned by ownerID.
func (r *Repository[T]) FindByID(ctx context.Context, id, ownerID uuid.UUID) (*T, error) {
	return r.one(ctx, "id = ? AND owner_id = ?", id, ownerID)
}

// FindAnyByID returns the row regardless of owner. Used to tell a free id
// from one taken by another user.
func (r *Repository[T]) FindAnyByID(ctx context.Context, id uuid.UUID) (*T, error) {
	return r.one(ctx, "id = ?", id)
}

// Add inserts v. Its header must already be stamped.
func (r *Repository[T]) Add(ctx context.Context, v *T) error {
	h := r.m.header(v)
	args := append([]any{
		h.ID, utc(h.CreatedAt), h.CreatedByUserID, h.OwnerID,
		utc(h.ModifiedAt), h.ModifiedByUserID, optTime(h.DeletedAt), optUUID(h.DeletedByUserID),
	}, r.m.args(v)...)

	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(r.insertSQL), args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.m.table, mapError(err))
	}
	r.logger.DebugContext(ctx, "Adding entity", log.FieldEntity, r.m.table, log.FieldEntityID, h.ID.String())
	return nil
}

// Update overwrites the domain columns of a live row owned by v's owner.
func (r *Repository[T]) Update(ctx context.Context, v *T) error {
	h := r.m.header(v)
	args := append([]any{h.OwnerID, utc(h.ModifiedAt), h.ModifiedByUserID}, r.m.args(v)...)
	args = append(args, h.ID, h.OwnerID)

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(r.updateSQL), args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.m.table, mapError(err))
	}
	return r.affected(ctx, res, "Updated rows", h.ID)
}

// Delete soft-deletes the row.
func (r *Repository[T]) Delete(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(r.deleteSQL), utc(time.Now()), userID, id, userID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.m.table, mapError(err))
	}
	return r.affected(ctx, res, "Deleted rows", id)
}

// deleteWhere soft-deletes every live row matching where.
func (r *Repository[T]) deleteWhere(ctx context.Context, userID uuid.UUID, where string, args ...any) (int64, error) {
	q := fmt.Sprintf("UPDATE %s SET deleted_at = ?, deleted_by_user_id = ? WHERE deleted_at IS NULL AND %s", r.m.table, where)
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(q), append([]any{utc(time.Now()), userID}, args...)...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", r.m.table, mapError(err))
	}
	n, _ := res.RowsAffected()
	r.logger.DebugContext(ctx, "Deleted rows", log.FieldEntity, r.m.table, log.FieldRows, n)
	return n, nil
}

// reassign points every live row of the owner whose column equals from at
// to instead.
func (r *Repository[T]) reassign(ctx context.Context, column string, from, to, userID uuid.UUID) (int64, error) {
	q := fmt.Sprintf("UPDATE %s SET %s = ?, modified_at = ?, modified_by_user_id = ? WHERE %s = ? AND owner_id = ? AND deleted_at IS NULL",
		r.m.table, column, column)
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(q), to, utc(time.Now()), userID, from, userID)
	if err != nil {
		return 0, fmt.Errorf("move %s: %w", r.m.table, mapError(err))
	}
	n, _ := res.RowsAffected()
	r.logger.DebugContext(ctx, "Moved rows", log.FieldEntity, r.m.table, log.FieldRows, n)
	return n, nil
}

func (r *Repository[T]) affected(ctx context.Context, res sql.Result, msg string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	r.logger.DebugContext(ctx, msg, log.FieldEntity, r.m.table, log.FieldEntityID, id.String(), log.FieldRows, n)
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// findWithDeleted returns the row with id even when it was soft-deleted.
func (r *Repository[T]) findWithDeleted(ctx context.Context, id uuid.UUID) (*T, error) {
	v, err := r.scanRow(r.db.QueryRowContext(ctx, r.dialect.Rebind(r.selectAnySQL), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", r.m.table, mapError(err))
	}
	return &v, nil
}

// Upsert inserts v when its id is unused and updates it when v's owner
// already owns it. An id held by someone else yields core.ErrForbidden.
// Ids of deleted rows are never reused and yield core.ErrConflict.
func (r *Repository[T]) Upsert(ctx context.Context, v *T) (created bool, err error) {
	err = inTx(ctx, r.db, func(tx DBTX) error {
		repo := r.WithTx(tx)
		h := r.m.header(v)

		existing, err := repo.findWithDeleted(ctx, h.ID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			created = true
			return repo.Add(ctx, v)
		case err != nil:
			return err
		}

		eh := r.m.header(existing)
		switch {
		case eh.OwnerID != h.OwnerID:
			return core.ErrForbidden
		case eh.Deleted():
			return fmt.Errorf("%s %s was deleted: %w", r.m.table, h.ID, core.ErrConflict)
		}
		return repo.Update(ctx, v)
	})
	return created, err
}

func utc(t time.Time) time.Time { return t.UTC() }

func optTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func optUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func optString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optInt(i *int) any {
	if i == nil {
		return nil
	}
	return int64(*i)
}

func optDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}
