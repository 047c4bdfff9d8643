package repository

import (
	"context"
	"fmt"
)

// CreateSchema creates all tables. Safe to call on every start.
func (r *Repository) CreateSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    telegram_id BIGINT PRIMARY KEY,
    handle TEXT,
    chat_id BIGINT NOT NULL,
    registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS meetings (
    id BIGSERIAL PRIMARY KEY,
    meeting_time TEXT NOT NULL,
    description TEXT NOT NULL,
    created_by BIGINT NOT NULL,
    status TEXT NOT NULL DEFAULT 'voting' CHECK (status IN ('voting', 'completed')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_meetings_status ON meetings(status);

CREATE TABLE IF NOT EXISTS votes (
    user_telegram_id BIGINT NOT NULL REFERENCES users(telegram_id),
    meeting_id BIGINT NOT NULL REFERENCES meetings(id),
    decision BOOLEAN NOT NULL,
    preference TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_telegram_id, meeting_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_meeting_id ON votes(meeting_id);

CREATE TABLE IF NOT EXISTS jokes (
    id BIGSERIAL PRIMARY KEY,
    text TEXT NOT NULL,
    kind TEXT NOT NULL DEFAULT 'shame'
);

CREATE INDEX IF NOT EXISTS idx_jokes_kind ON jokes(kind);
`
