// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Drivers

Open selects a driver by type:

	conn, err := db.Open("sqlite", "lunchbuddy.db")
	conn, err := db.Open("postgres", "postgres://...")

sqlite connections are limited to a single pooled connection, which also
serializes read-modify-write sequences from concurrent requests.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
Timestamps are inserted explicitly by the application, keeping the SQL
portable between sqlite and postgres.

# Tables

The schema includes:

  - planning_session: Session identity and activity stamp
  - session_status: Lifecycle pointer, one row per session
  - app_user: Global user directory, created lazily
  - lunch_option: Candidate choices, insertion-ordered via position
  - vote: Toggled votes, unique per (session, user, option)
  - volunteer: Append-only hand-off audit
  - food_request: Individual orders
  - user_session: Participation history

# Relationships

	planning_session 1──1 session_status
	planning_session 1──* lunch_option
	planning_session 1──* vote
	planning_session 1──* volunteer
	planning_session 1──* food_request
	app_user *──* planning_session (via user_session)

All foreign keys use ON DELETE CASCADE, though sessions are never deleted;
the daily reset clears the per-session collections explicitly.
*/
package db
