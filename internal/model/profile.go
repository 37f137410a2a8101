package model

import "time"

// Profile mirrors the subset of the external identity provider's user
// record that the backend needs locally (notification address, display
// name for public lock pages).  It is upserted lazily on first checkout.
type Profile struct {
	UserID      string    // profiles.user_id (identity provider subject)
	Email       string    // profiles.email
	DisplayName string    // profiles.display_name
	CreatedAt   time.Time // profiles.created_at
	UpdatedAt   time.Time // profiles.updated_at
}
