package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureHistorySchema creates the publish history table and its index. Safe to
// call on every start.
func EnsureHistorySchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS linkedin_publish_records (
		id BIGSERIAL PRIMARY KEY,
		post_urn TEXT NOT NULL,
		author_urn TEXT NOT NULL,
		variant TEXT NOT NULL,
		visibility TEXT NOT NULL,
		sent_length INTEGER NOT NULL,
		stored_length INTEGER,
		verification TEXT NOT NULL DEFAULT 'unavailable',
		media_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`); err != nil {
		return fmt.Errorf("creating linkedin_publish_records: %w", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_linkedin_publish_records_created_at ON linkedin_publish_records (created_at DESC)`); err != nil {
		return fmt.Errorf("creating idx_linkedin_publish_records_created_at: %w", err)
	}
	return nil
}
