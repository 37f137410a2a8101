package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pontdesarts/lovelock/internal/model"
)

// ProfileRepo mirrors the identity provider's user records locally.
// Rows are upserted lazily the first time a user starts a checkout.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo returns a new ProfileRepo bound to the provided
// database.
func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// Upsert inserts or refreshes the mirror row for a user.
func (r *ProfileRepo) Upsert(ctx context.Context, p *model.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, email, display_name)
         VALUES (?, ?, ?)
         ON DUPLICATE KEY UPDATE email = VALUES(email), display_name = VALUES(display_name)`,
		p.UserID, p.Email, p.DisplayName,
	)
	return err
}

// GetByUserID fetches the mirror row for a user. Returns
// ErrProfileNotFound when the user never started a checkout.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, email, display_name, created_at, updated_at
         FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.Email, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
