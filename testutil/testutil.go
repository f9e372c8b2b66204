// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lunchbuddy/server/cliparse"
	"github.com/lunchbuddy/server/db"
	"github.com/lunchbuddy/server/ids"
)

// SetupTestDB creates a fresh in-memory sqlite database with the full schema.
// The database is private to the single pooled connection, so every test
// starts empty.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3327,
		DatabaseType:  "sqlite",
		DatabaseURL:   ":memory:",
		VoteThreshold: 2,
	}
}

// CreateTestSession creates a planning session with a status row in the given
// state and returns its id.
func CreateTestSession(t *testing.T, conn *sql.DB, state string) string {
	t.Helper()

	sessionID, err := ids.NewSessionID()
	if err != nil {
		t.Fatalf("Failed to generate session id: %v", err)
	}

	now := time.Now()
	_, err = conn.Exec(`
		INSERT INTO planning_session (id, created_at, last_activity)
		VALUES ($1, $2, $3)
	`, sessionID, now, now)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO session_status (session_id, state, volunteer_id, last_reset)
		VALUES ($1, $2, NULL, $3)
	`, sessionID, state, now)
	if err != nil {
		t.Fatalf("Failed to create test status: %v", err)
	}

	return sessionID
}

// SetLastReset overwrites a session's last_reset stamp, used to simulate a
// session last touched on an earlier day.
func SetLastReset(t *testing.T, conn *sql.DB, sessionID string, lastReset time.Time) {
	t.Helper()

	_, err := conn.Exec(`
		UPDATE session_status SET last_reset = $1 WHERE session_id = $2
	`, lastReset, sessionID)
	if err != nil {
		t.Fatalf("Failed to set last_reset: %v", err)
	}
}

// AddTestOption adds a lunch option to a session and returns the option ID
func AddTestOption(t *testing.T, conn *sql.DB, sessionID, name, addedBy string) string {
	t.Helper()

	CreateTestUser(t, conn, addedBy, addedBy)

	optionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO lunch_option (id, session_id, name, description, added_by, position, created_at)
		VALUES ($1, $2, $3, '', $4, (SELECT COUNT(*) FROM lunch_option WHERE session_id = $5), $6)
	`, optionID, sessionID, name, addedBy, sessionID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// CastTestVote inserts a vote record directly and returns its ID
func CastTestVote(t *testing.T, conn *sql.DB, sessionID, userID, optionID string) string {
	t.Helper()

	CreateTestUser(t, conn, userID, userID)

	voteID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO vote (id, session_id, user_id, option_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, sessionID, userID, optionID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return voteID
}

// CreateTestUser inserts a user record if it does not exist yet
func CreateTestUser(t *testing.T, conn *sql.DB, userID, name string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO app_user (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, userID, name)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
