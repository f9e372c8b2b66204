// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// Open connects to the configured database. dbType selects the driver:
// "sqlite" (modernc.org/sqlite, pure Go) or "postgres" (lib/pq).
// sqlite is confined to a single connection so that read-modify-write
// sequences from concurrent requests are serialized.
func Open(dbType, url string) (*sql.DB, error) {
	switch dbType {
	case "sqlite":
		conn, err := sql.Open("sqlite", url)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		conn.SetMaxOpenConns(1)
		return conn, nil
	case "postgres":
		conn, err := sql.Open("postgres", url)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		return conn, nil
	}
	return nil, fmt.Errorf("unknown database type %q (want sqlite or postgres)", dbType)
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS. Timestamps are always
// inserted explicitly, so the schema stays portable between sqlite and postgres.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Planning sessions (never deleted; daily reset clears their working data)
CREATE TABLE IF NOT EXISTS planning_session (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    last_activity TIMESTAMP NOT NULL
);

-- Lifecycle pointer, exactly one row per session
CREATE TABLE IF NOT EXISTS session_status (
    session_id TEXT PRIMARY KEY REFERENCES planning_session(id) ON DELETE CASCADE,
    state TEXT NOT NULL CHECK (state IN ('planning', 'ordering', 'picked up', 'delivered')),
    volunteer_id TEXT,
    last_reset TIMESTAMP NOT NULL
);

-- Users are a global namespace shared across sessions, created lazily
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT
);

-- Candidate lunch options, insertion-ordered via position
CREATE TABLE IF NOT EXISTS lunch_option (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES planning_session(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT,
    added_by TEXT NOT NULL,
    position INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lunch_option_session ON lunch_option(session_id);

-- Votes; the toggle keeps (session, user, option) unique
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES planning_session(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    option_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (session_id, user_id, option_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_session ON vote(session_id);
CREATE INDEX IF NOT EXISTS idx_vote_option ON vote(option_id);

-- Append-only audit of hand-off events
CREATE TABLE IF NOT EXISTS volunteer (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES planning_session(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    option_id TEXT NOT NULL,
    date TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_volunteer_session ON volunteer(session_id);

-- Individual food orders collected during the ordering phase
CREATE TABLE IF NOT EXISTS food_request (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES planning_session(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    volunteer_id TEXT NOT NULL,
    request TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('pending', 'fulfilled')),
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_food_request_session ON food_request(session_id);

-- Participation history, linked lazily on mutating operations
CREATE TABLE IF NOT EXISTS user_session (
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    session_id TEXT NOT NULL REFERENCES planning_session(id) ON DELETE CASCADE,
    linked_at TIMESTAMP NOT NULL,
    PRIMARY KEY (user_id, session_id)
);

CREATE INDEX IF NOT EXISTS idx_user_session_user ON user_session(user_id);
`
