// internal/db/migrations.go
package db

import (
	"database/sql"
	"fmt"
)

// schema is applied idempotently at startup. The (status, send_at) index on
// send_jobs backs the due-job selection; the unique (sender_id, day) pair on
// daily_send_counters backs the atomic quota upsert.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sequences (
		id BIGSERIAL PRIMARY KEY,
		tenant_id BIGINT NOT NULL,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sequence_steps (
		id BIGSERIAL PRIMARY KEY,
		sequence_id BIGINT NOT NULL REFERENCES sequences(id) ON DELETE CASCADE,
		step_number INT NOT NULL,
		delay_days INT NOT NULL DEFAULT 0,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		UNIQUE (sequence_id, step_number)
	)`,
	`CREATE TABLE IF NOT EXISTS campaigns (
		id BIGSERIAL PRIMARY KEY,
		tenant_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		sequence_id BIGINT NOT NULL REFERENCES sequences(id),
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id BIGSERIAL PRIMARY KEY,
		tenant_id BIGINT NOT NULL,
		email TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS campaign_contacts (
		campaign_id BIGINT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		contact_id BIGINT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
		PRIMARY KEY (campaign_id, contact_id)
	)`,
	`CREATE TABLE IF NOT EXISTS senders (
		id BIGSERIAL PRIMARY KEY,
		tenant_id BIGINT NOT NULL,
		email TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		credential TEXT NOT NULL DEFAULT '',
		daily_limit INT NOT NULL DEFAULT 40,
		timezone TEXT NOT NULL DEFAULT 'UTC'
	)`,
	`CREATE TABLE IF NOT EXISTS send_jobs (
		id UUID PRIMARY KEY,
		tenant_id BIGINT NOT NULL,
		campaign_id BIGINT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		contact_id BIGINT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
		sender_id BIGINT NOT NULL REFERENCES senders(id) ON DELETE CASCADE,
		sequence_id BIGINT NOT NULL,
		step_id BIGINT NOT NULL,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		send_at TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL DEFAULT 'queued',
		error_message TEXT NOT NULL DEFAULT '',
		retry_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_send_jobs_due ON send_jobs (status, send_at)`,
	`CREATE TABLE IF NOT EXISTS daily_send_counters (
		sender_id BIGINT NOT NULL REFERENCES senders(id) ON DELETE CASCADE,
		day DATE NOT NULL,
		count INT NOT NULL DEFAULT 0,
		UNIQUE (sender_id, day)
	)`,
}

// Migrate applies the embedded schema statements in order.
func Migrate(conn *sql.DB) error {
	for i, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}
	}
	return nil
}
