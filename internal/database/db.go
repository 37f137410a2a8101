// Package database opens the MySQL handle and owns the schema for the
// lovelock tables.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema holds the CREATE TABLE statements, one per table, executed in
// order at startup. IF NOT EXISTS keeps restarts idempotent; column
// changes still go through ALTERs managed outside the binary.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS locks (
        id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
        owner_id VARCHAR(64) NULL,
        zone VARCHAR(16) NOT NULL,
        finish VARCHAR(16) NOT NULL,
        status VARCHAR(16) NOT NULL,
        price_cents BIGINT NOT NULL DEFAULT 0,
        is_private TINYINT(1) NOT NULL DEFAULT 0,
        content_text TEXT NOT NULL,
        media_type VARCHAR(16) NULL,
        media_url VARCHAR(512) NULL,
        golden_asset_price_cents BIGINT NULL,
        boost_tier VARCHAR(16) NULL,
        boost_until DATETIME NULL,
        pending_until DATETIME NULL,
        view_count BIGINT UNSIGNED NOT NULL DEFAULT 0,
        media_earnings_cents BIGINT NOT NULL DEFAULT 0,
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        KEY idx_locks_status_pending (status, pending_until),
        KEY idx_locks_owner (owner_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS transactions (
        id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        lock_id BIGINT UNSIGNED NOT NULL,
        buyer_id VARCHAR(64) NOT NULL,
        kind VARCHAR(32) NOT NULL,
        amount_cents BIGINT NOT NULL,
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        KEY idx_transactions_lock (lock_id),
        KEY idx_transactions_buyer (buyer_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS webhook_events (
        id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        provider VARCHAR(20) NOT NULL,
        provider_event_id VARCHAR(191) NOT NULL,
        event_type VARCHAR(100) NOT NULL,
        claimed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        completed_at DATETIME NULL,
        UNIQUE KEY ux_webhook_events_provider_event (provider, provider_event_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS promo_codes (
        id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        code VARCHAR(32) NOT NULL,
        percent_off INT NOT NULL,
        max_uses INT NOT NULL DEFAULT 0,
        uses INT NOT NULL DEFAULT 0,
        expires_at DATETIME NULL,
        active TINYINT(1) NOT NULL DEFAULT 1,
        UNIQUE KEY ux_promo_codes_code (code)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS profiles (
        user_id VARCHAR(64) NOT NULL PRIMARY KEY,
        email VARCHAR(255) NOT NULL,
        display_name VARCHAR(100) NOT NULL DEFAULT '',
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
