// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lunchbuddy/server/cliparse"
	"github.com/lunchbuddy/server/ids"
	"github.com/lunchbuddy/server/middleware"
	"github.com/lunchbuddy/server/models"
)

type PlanningHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPlanningHandler(db *sql.DB, cfg cliparse.Config) *PlanningHandler {
	return &PlanningHandler{db: db, cfg: cfg}
}

// CreateSession handles POST /sessions
func (h *PlanningHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := ids.NewSessionID()
	if err != nil {
		slog.Error("failed to generate session ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	now := time.Now()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO planning_session (id, created_at, last_activity)
		VALUES ($1, $2, $3)
	`, sessionID, now, now)
	if err != nil {
		slog.Error("failed to insert session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO session_status (session_id, state, volunteer_id, last_reset)
		VALUES ($1, $2, NULL, $3)
	`, sessionID, models.StatePlanning, now)
	if err != nil {
		slog.Error("failed to insert status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("session created", "session_id", sessionID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID: sessionID,
	})
}

// GetSession handles GET /sessions/{id}
// Used by the UI to validate deep links before rendering the board.
func (h *PlanningHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	session, err := getSession(h.db, sessionID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	touchActivity(h.db, sessionID)

	middleware.JSONResponse(w, http.StatusOK, session)
}

// GetLunchData handles GET /sessions/{id}/lunch-data
// Returns the known users plus the session's options and votes, after the
// lazy daily-reset check.
func (h *PlanningHandler) GetLunchData(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	if _, err := getSession(h.db, sessionID); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	} else if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := maybeResetDaily(h.db, sessionID); err != nil {
		slog.Error("daily reset failed", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	users, err := loadUsers(h.db)
	if err != nil {
		slog.Error("failed to query users", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	options, err := loadOptions(h.db, sessionID)
	if err != nil {
		slog.Error("failed to query options", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	votes, err := loadVotes(h.db, sessionID)
	if err != nil {
		slog.Error("failed to query votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	touchActivity(h.db, sessionID)

	middleware.JSONResponse(w, http.StatusOK, models.LunchDataResponse{
		Users:   users,
		Options: options,
		Votes:   votes,
	})
}

// AddOption handles POST /sessions/{id}/options
func (h *PlanningHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req models.AddOptionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.AddedBy == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "added_by is required")
		return
	}

	if _, err := getSession(h.db, sessionID); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	} else if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Options can only be proposed while the session is still planning
	status, err := ensureStatus(h.db, sessionID)
	if err != nil {
		slog.Error("failed to query status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if status.State != models.StatePlanning {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot add options outside the planning phase")
		return
	}

	option := models.LunchOption{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Name:        req.Name,
		Description: req.Description,
		AddedBy:     req.AddedBy,
		CreatedAt:   time.Now(),
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	if err := ensureUser(tx, req.AddedBy, req.AddedByName); err != nil {
		slog.Error("failed to ensure user", "error", err, "user_id", req.AddedBy)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create option")
		return
	}
	if err := linkUserSession(tx, req.AddedBy, sessionID); err != nil {
		slog.Error("failed to link user to session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create option")
		return
	}

	// position preserves insertion order for the winner tie-break
	_, err = tx.Exec(`
		INSERT INTO lunch_option (id, session_id, name, description, added_by, position, created_at)
		VALUES ($1, $2, $3, $4, $5, (SELECT COUNT(*) FROM lunch_option WHERE session_id = $6), $7)
	`, option.ID, sessionID, option.Name, option.Description, option.AddedBy, sessionID, option.CreatedAt)
	if err != nil {
		slog.Error("failed to insert option", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create option")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create option")
		return
	}

	touchActivity(h.db, sessionID)

	slog.Info("option added", "session_id", sessionID, "option_id", option.ID, "name", option.Name)

	middleware.JSONResponse(w, http.StatusCreated, option)
}

// getSession loads a planning session row. Returns sql.ErrNoRows when the
// session was never created.
func getSession(db *sql.DB, sessionID string) (models.PlanningSession, error) {
	var session models.PlanningSession
	err := db.QueryRow(`
		SELECT id, created_at, last_activity
		FROM planning_session
		WHERE id = $1
	`, sessionID).Scan(&session.ID, &session.CreatedAt, &session.LastActivity)
	return session, err
}

// touchActivity stamps last_activity = now. Failures are logged, not fatal:
// activity tracking is housekeeping, not part of any operation's contract.
func touchActivity(db *sql.DB, sessionID string) {
	_, err := db.Exec(`
		UPDATE planning_session SET last_activity = $1 WHERE id = $2
	`, time.Now(), sessionID)
	if err != nil {
		slog.Error("failed to update last_activity", "error", err, "session_id", sessionID)
	}
}

// ensureStatus returns the session's status row, initializing planning
// defaults on first use. A missing row is not an error.
func ensureStatus(db *sql.DB, sessionID string) (models.Status, error) {
	status := models.Status{SessionID: sessionID}

	var volunteerID sql.NullString
	err := db.QueryRow(`
		SELECT state, volunteer_id, last_reset
		FROM session_status
		WHERE session_id = $1
	`, sessionID).Scan(&status.State, &volunteerID, &status.LastReset)

	if err == sql.ErrNoRows {
		status.State = models.StatePlanning
		status.VolunteerID = nil
		status.LastReset = time.Now()
		_, err = db.Exec(`
			INSERT INTO session_status (session_id, state, volunteer_id, last_reset)
			VALUES ($1, $2, NULL, $3)
		`, sessionID, status.State, status.LastReset)
		return status, err
	}
	if err != nil {
		return status, err
	}

	if volunteerID.Valid {
		status.VolunteerID = &volunteerID.String
	}
	return status, nil
}

// maybeResetDaily clears the session's working data when the stored reset
// stamp is from an earlier calendar day (local date comparison, not a rolling
// 24h window). Invoked from read entry points, never from a timer.
func maybeResetDaily(db *sql.DB, sessionID string) error {
	status, err := ensureStatus(db, sessionID)
	if err != nil {
		return err
	}

	ly, lm, ld := status.LastReset.Local().Date()
	ty, tm, td := time.Now().Date()
	if ly == ty && lm == tm && ld == td {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM lunch_option WHERE session_id = $1`,
		`DELETE FROM vote WHERE session_id = $1`,
		`DELETE FROM volunteer WHERE session_id = $1`,
		`DELETE FROM food_request WHERE session_id = $1`,
	} {
		if _, err := tx.Exec(stmt, sessionID); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`
		UPDATE session_status
		SET state = $1, volunteer_id = NULL, last_reset = $2
		WHERE session_id = $3
	`, models.StatePlanning, time.Now(), sessionID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("daily reset performed", "session_id", sessionID)
	return nil
}

// loadOptions returns a session's options in insertion order.
func loadOptions(db *sql.DB, sessionID string) ([]models.LunchOption, error) {
	rows, err := db.Query(`
		SELECT id, session_id, name, description, added_by, created_at
		FROM lunch_option
		WHERE session_id = $1
		ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []models.LunchOption{}
	for rows.Next() {
		var opt models.LunchOption
		if err := rows.Scan(&opt.ID, &opt.SessionID, &opt.Name, &opt.Description, &opt.AddedBy, &opt.CreatedAt); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}

	return options, rows.Err()
}

// loadVotes returns a session's votes in insertion order.
func loadVotes(db *sql.DB, sessionID string) ([]models.Vote, error) {
	rows, err := db.Query(`
		SELECT id, session_id, user_id, option_id, created_at
		FROM vote
		WHERE session_id = $1
		ORDER BY created_at, id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.SessionID, &v.UserID, &v.OptionID, &v.CreatedAt); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}

	return votes, rows.Err()
}
