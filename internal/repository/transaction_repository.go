package repository

import (
	"context"
	"database/sql"

	"github.com/pontdesarts/lovelock/internal/model"
)

// TransactionRepo provides access to the append-only transactions
// ledger. Rows are inserted by the webhook reconciler after a confirmed
// payment and are never updated or deleted.
type TransactionRepo struct {
	db *sql.DB
}

// NewTransactionRepo returns a new TransactionRepo bound to the
// provided database.
func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

// Create appends a ledger row. The created_at column is set by the
// database.
func (r *TransactionRepo) Create(ctx context.Context, t *model.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (lock_id, buyer_id, kind, amount_cents)
         VALUES (?, ?, ?, ?)`,
		t.LockID, t.BuyerID, t.Kind, t.AmountCents,
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		t.ID = uint64(id)
	}
	return nil
}

// ListByLock returns the ledger for one lock, oldest first, so the
// public history reads as a timeline.
func (r *TransactionRepo) ListByLock(ctx context.Context, lockID uint64) ([]*model.Transaction, error) {
	return r.list(ctx,
		`SELECT id, lock_id, buyer_id, kind, amount_cents, created_at
         FROM transactions WHERE lock_id = ? ORDER BY created_at ASC, id ASC`, lockID)
}

// ListByBuyer returns every transaction a user has paid for, newest
// first.
func (r *TransactionRepo) ListByBuyer(ctx context.Context, buyerID string) ([]*model.Transaction, error) {
	return r.list(ctx,
		`SELECT id, lock_id, buyer_id, kind, amount_cents, created_at
         FROM transactions WHERE buyer_id = ? ORDER BY created_at DESC, id DESC`, buyerID)
}

// ListRecent returns the newest rows across all locks, for the admin
// back-office.
func (r *TransactionRepo) ListRecent(ctx context.Context, limit int) ([]*model.Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return r.list(ctx,
		`SELECT id, lock_id, buyer_id, kind, amount_cents, created_at
         FROM transactions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

func (r *TransactionRepo) list(ctx context.Context, query string, args ...any) ([]*model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.LockID, &t.BuyerID, &t.Kind, &t.AmountCents, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
