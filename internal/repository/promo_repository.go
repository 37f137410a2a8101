package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/pontdesarts/lovelock/internal/model"
)

// PromoRepo provides access to the promo_codes table. Codes discount
// new-purchase checkouts; the usage counter only moves when the webhook
// confirms the discounted payment.
type PromoRepo struct {
	db *sql.DB
}

// NewPromoRepo returns a new PromoRepo bound to the provided database.
func NewPromoRepo(db *sql.DB) *PromoRepo { return &PromoRepo{db: db} }

// GetActive fetches a code that is active and not expired. Usability
// beyond that (max uses) is checked by the caller via Usable so the
// model owns the rule in one place.
func (r *PromoRepo) GetActive(ctx context.Context, code string) (*model.PromoCode, error) {
	var p model.PromoCode
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, percent_off, max_uses, uses, expires_at, active
         FROM promo_codes WHERE code = ? AND active = 1`,
		strings.ToUpper(strings.TrimSpace(code)),
	).Scan(&p.ID, &p.Code, &p.PercentOff, &p.MaxUses, &p.Uses, &p.ExpiresAt, &p.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPromoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Redeem increments the usage counter, conditional on the ceiling not
// being reached, in one statement. Zero rows affected means the code
// was exhausted between checkout and payment confirmation; the payment
// already went through at the discounted amount, so callers log and
// move on rather than failing the reconciliation.
func (r *PromoRepo) Redeem(ctx context.Context, code string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE promo_codes SET uses = uses + 1
         WHERE code = ? AND active = 1 AND (max_uses = 0 OR uses < max_uses)`,
		strings.ToUpper(strings.TrimSpace(code)),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
