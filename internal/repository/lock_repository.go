package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/pontdesarts/lovelock/internal/model"
)

// lockColumns is the column list used by every SELECT that scans a full
// lock row. Keep in sync with scanLock.
const lockColumns = `id, owner_id, zone, finish, status, price_cents, is_private,
    content_text, media_type, media_url, golden_asset_price_cents,
    boost_tier, boost_until, pending_until, view_count, media_earnings_cents,
    created_at, updated_at`

// LockRepo provides data access to the locks table. All timestamps are
// stored and compared in UTC; expiry predicates run inside SQL
// (pending_until <= UTC_TIMESTAMP()) so transitions are single
// conditional statements rather than read-then-write sequences.
type LockRepo struct {
	db *sql.DB
}

// NewLockRepo returns a new LockRepo bound to the provided database.
func NewLockRepo(db *sql.DB) *LockRepo { return &LockRepo{db: db} }

func scanLock(row interface{ Scan(...any) error }) (*model.Lock, error) {
	var l model.Lock
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.Zone, &l.Finish, &l.Status, &l.PriceCents,
		&l.IsPrivate, &l.ContentText, &l.MediaType, &l.MediaURL,
		&l.GoldenAssetPriceCents, &l.BoostTier, &l.BoostUntil,
		&l.PendingUntil, &l.ViewCount, &l.MediaEarningsCents,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByID fetches a single lock row. Returns ErrLockNotFound when the
// id has no row.
func (r *LockRepo) GetByID(ctx context.Context, id uint64) (*model.Lock, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+lockColumns+` FROM locks WHERE id = ?`, id)
	l, err := scanLock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLockNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// PendingLock captures the configuration written when a checkout
// session is opened. The row it produces is the one-hour reservation
// hold; only a confirmed payment promotes it to ACTIVE.
type PendingLock struct {
	ID           uint64
	OwnerID      string
	Zone         string
	Finish       string
	PriceCents   int64
	IsPrivate    bool
	ContentText  string
	MediaType    *string
	PendingUntil time.Time
}

// UpsertPending reserves a lock number ahead of payment. Inside one
// transaction it locks the row (if any) and then either inserts a fresh
// PENDING row, overwrites an existing PENDING row (a user retrying
// checkout keeps the same number and the newest configuration wins), or
// fails with ErrSlotUnavailable when the number is already ACTIVE,
// BANNED or RESERVED. An expired PENDING row left behind by an
// abandoned session is overwritten the same way a live one is.
func (r *LockRepo) UpsertPending(ctx context.Context, p PendingLock) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM locks WHERE id = ? FOR UPDATE`, p.ID).Scan(&status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO locks (id, owner_id, zone, finish, status, price_cents, is_private,
                 content_text, media_type, pending_until)
             VALUES (?, ?, ?, ?, 'PENDING', ?, ?, ?, ?, ?)`,
			p.ID, p.OwnerID, p.Zone, p.Finish, p.PriceCents, p.IsPrivate,
			p.ContentText, p.MediaType, p.PendingUntil.UTC().Format("2006-01-02 15:04:05"),
		)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	case status == model.StatusPending:
		_, err = tx.ExecContext(ctx,
			`UPDATE locks SET owner_id = ?, zone = ?, finish = ?, price_cents = ?,
                 is_private = ?, content_text = ?, media_type = ?, pending_until = ?
             WHERE id = ? AND status = 'PENDING'`,
			p.OwnerID, p.Zone, p.Finish, p.PriceCents, p.IsPrivate,
			p.ContentText, p.MediaType, p.PendingUntil.UTC().Format("2006-01-02 15:04:05"), p.ID,
		)
		if err != nil {
			return err
		}
	default:
		return ErrSlotUnavailable
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ActivatedLock carries everything needed to finalize a new purchase.
// The fields mirror the checkout session metadata so the row can be
// rebuilt even when the reaper deleted the hold before the completion
// event arrived.
type ActivatedLock struct {
	ID          uint64
	OwnerID     string
	Zone        string
	Finish      string
	PriceCents  int64
	IsPrivate   bool
	ContentText string
	MediaType   *string
}

// ActivateOrRestore promotes a PENDING lock to ACTIVE and clears its
// hold in a single conditional statement. When no PENDING row matches
// (the reaper swept the hold before the confirmed payment arrived) the
// row is rebuilt from the session metadata with INSERT IGNORE. If the
// row exists in any other state a different event already advanced the
// lock and ErrSlotUnavailable is returned so the caller does not
// re-apply the transition.
func (r *LockRepo) ActivateOrRestore(ctx context.Context, a ActivatedLock) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE locks SET status = 'ACTIVE', owner_id = ?, pending_until = NULL
         WHERE id = ? AND status = 'PENDING'`,
		a.OwnerID, a.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	res, err = r.db.ExecContext(ctx,
		`INSERT IGNORE INTO locks (id, owner_id, zone, finish, status, price_cents,
             is_private, content_text, media_type)
         VALUES (?, ?, ?, ?, 'ACTIVE', ?, ?, ?, ?)`,
		a.ID, a.OwnerID, a.Zone, a.Finish, a.PriceCents, a.IsPrivate,
		a.ContentText, a.MediaType,
	)
	if err != nil {
		return err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotUnavailable
	}
	return nil
}

// DeletePending removes a lock row only while it is still PENDING. Used
// for session-expired webhook events and for rolling back a reservation
// when the payment provider refuses to open a session. Deleting an id
// that was already activated affects zero rows and is not an error.
func (r *LockRepo) DeletePending(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM locks WHERE id = ? AND status = 'PENDING'`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReapExpired deletes every PENDING lock whose hold has lapsed and
// returns the ids removed. Selection and deletion run inside one
// transaction with the selected rows locked, and the DELETE is scoped
// to exactly those ids with the expiry predicate repeated, so a hold
// that expires or is refreshed mid-sweep is neither silently removed
// nor misreported: the ids returned are precisely the rows deleted.
func (r *LockRepo) ReapExpired(ctx context.Context) ([]uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM locks WHERE status = 'PENDING' AND pending_until <= UTC_TIMESTAMP() FOR UPDATE`)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for rows.Next() {
		var id uint64
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		committed = true
		return []uint64{}, nil
	}

	query, args := expiredDeleteQuery(ids)
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return ids, nil
}

// expiredDeleteQuery builds the id-scoped DELETE for one sweep. The
// status and expiry predicate is repeated alongside the id list so the
// statement can only ever remove rows the caller selected as lapsed.
func expiredDeleteQuery(ids []uint64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `DELETE FROM locks WHERE id IN (?` + strings.Repeat(", ?", len(ids)-1) +
		`) AND status = 'PENDING' AND pending_until <= UTC_TIMESTAMP()`
	return query, args
}

// Transfer moves a marketplace-listed lock to a new owner: sets ACTIVE,
// clears the resale listing and resets any boost. Conditional on the
// listing still being present so a duplicate completion event cannot
// re-transfer the lock after the first already cleared the price.
func (r *LockRepo) Transfer(ctx context.Context, id uint64, newOwnerID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE locks SET owner_id = ?, status = 'ACTIVE', golden_asset_price_cents = NULL,
             boost_tier = NULL, boost_until = NULL
         WHERE id = ? AND golden_asset_price_cents IS NOT NULL`,
		newOwnerID, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotUnavailable
	}
	return nil
}

// SetBoost applies a boost tier and expiry to an ACTIVE lock.
func (r *LockRepo) SetBoost(ctx context.Context, id uint64, tier string, until time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE locks SET boost_tier = ?, boost_until = ?
         WHERE id = ? AND status = 'ACTIVE'`,
		tier, until.UTC().Format("2006-01-02 15:04:05"), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotUnavailable
	}
	return nil
}

// SetMediaType records a purchased media upgrade on an ACTIVE lock.
func (r *LockRepo) SetMediaType(ctx context.Context, id uint64, mediaType string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE locks SET media_type = ? WHERE id = ? AND status = 'ACTIVE'`,
		mediaType, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotUnavailable
	}
	return nil
}

// AddMediaUnlock credits one paid media view to the lock owner: view
// counter and earnings accumulator move together in one statement.
func (r *LockRepo) AddMediaUnlock(ctx context.Context, id uint64, feeCents int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE locks SET view_count = view_count + 1,
             media_earnings_cents = media_earnings_cents + ?
         WHERE id = ?`,
		feeCents, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLockNotFound
	}
	return nil
}

// SetStatus is the admin moderation hook (ban/unban). It refuses to
// touch PENDING rows; those belong to the checkout flow and the reaper.
func (r *LockRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE locks SET status = ? WHERE id = ? AND status <> 'PENDING'`,
		status, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLockNotFound
	}
	return nil
}

// SetResalePrice lists (positive price) or unlists (nil) a lock on the
// marketplace. Only the owner's ACTIVE locks can be listed; ownership is
// checked in the predicate so the statement stays atomic.
func (r *LockRepo) SetResalePrice(ctx context.Context, id uint64, ownerID string, priceCents *int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE locks SET golden_asset_price_cents = ?
         WHERE id = ? AND owner_id = ? AND status = 'ACTIVE'`,
		priceCents, id, ownerID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotUnavailable
	}
	return nil
}

// ListByOwner returns all non-pending locks owned by a user, newest
// first.
func (r *LockRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Lock, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+lockColumns+` FROM locks
         WHERE owner_id = ? AND status <> 'PENDING'
         ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var locks []*model.Lock
	for rows.Next() {
		l, err := scanLock(rows)
		if err != nil {
			return nil, err
		}
		locks = append(locks, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return locks, nil
}

// Delete removes a lock row unconditionally. Admin only.
func (r *LockRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM locks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLockNotFound
	}
	return nil
}
