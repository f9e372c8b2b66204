// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/lunchbuddy/server/cliparse"
	"github.com/lunchbuddy/server/middleware"
	"github.com/lunchbuddy/server/models"
)

type UserHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewUserHandler(db *sql.DB, cfg cliparse.Config) *UserHandler {
	return &UserHandler{db: db, cfg: cfg}
}

// GetUser handles GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user id is required")
		return
	}

	var user models.User
	var email sql.NullString
	err := h.db.QueryRow(`
		SELECT id, name, email FROM app_user WHERE id = $1
	`, userID).Scan(&user.ID, &user.Name, &email)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if email.Valid {
		user.Email = &email.String
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// GetUserSessions handles GET /users/{id}/sessions
// Returns the sessions this user has participated in, most recent first.
func (h *UserHandler) GetUserSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user id is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM app_user WHERE id = $1)
	`, userID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	rows, err := h.db.Query(`
		SELECT us.session_id, ss.state, us.linked_at, ps.last_activity
		FROM user_session us
		JOIN planning_session ps ON us.session_id = ps.id
		JOIN session_status ss ON us.session_id = ss.session_id
		WHERE us.user_id = $1
		ORDER BY us.linked_at DESC
	`, userID)
	if err != nil {
		slog.Error("failed to query user sessions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	sessions := []models.UserSessionSummary{}
	for rows.Next() {
		var s models.UserSessionSummary
		if err := rows.Scan(&s.SessionID, &s.State, &s.LinkedAt, &s.LastActivity); err != nil {
			slog.Error("failed to scan user session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		sessions = append(sessions, s)
	}

	middleware.JSONResponse(w, http.StatusOK, models.UserSessionsResponse{Sessions: sessions})
}

// execer lets the user helpers run inside or outside a transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// ensureUser creates a user record the first time an id is referenced.
// Names are self-asserted; with no name supplied the id doubles as the name.
// Existing records are left untouched.
func ensureUser(q execer, userID, name string) error {
	if name == "" {
		name = userID
	}
	_, err := q.Exec(`
		INSERT INTO app_user (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, userID, name)
	return err
}

// linkUserSession records that a user has touched a session. Purely
// participation history; membership is never checked anywhere.
func linkUserSession(q execer, userID, sessionID string) error {
	_, err := q.Exec(`
		INSERT INTO user_session (user_id, session_id, linked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, session_id) DO NOTHING
	`, userID, sessionID, time.Now())
	return err
}

// loadUsers returns every known user. The user directory is global and shared
// across sessions; there is no per-session membership.
func loadUsers(db *sql.DB) ([]models.User, error) {
	rows, err := db.Query(`
		SELECT id, name, email FROM app_user ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		var email sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &email); err != nil {
			return nil, err
		}
		if email.Valid {
			u.Email = &email.String
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
