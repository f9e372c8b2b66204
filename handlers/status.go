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
	"github.com/lunchbuddy/server/middleware"
	"github.com/lunchbuddy/server/models"
)

type StatusHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewStatusHandler(db *sql.DB, cfg cliparse.Config) *StatusHandler {
	return &StatusHandler{db: db, cfg: cfg}
}

// GetStatus handles GET /sessions/{id}/status
// Runs the lazy daily-reset check first, so a status read can itself reset
// the session. Idempotent: a no-op if already reset today.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
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

	status, err := ensureStatus(h.db, sessionID)
	if err != nil {
		slog.Error("failed to query status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	touchActivity(h.db, sessionID)

	middleware.JSONResponse(w, http.StatusOK, status)
}

// UpdateStatus handles PUT /sessions/{id}/status
// Overwrites the state unconditionally: any caller can jump to any state,
// which lets a group undo a mistaken update. Irregular jumps are logged,
// not rejected.
// An omitted volunteer_id retains the previous one, so it sticks once set.
func (h *StatusHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req models.UpdateStatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !models.ValidState(req.State) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "state must be one of: planning, ordering, picked up, delivered")
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

	// A cross-day write lands on a fresh board, not on yesterday's data:
	// otherwise a stale volunteer would be retained and the hand-off audit
	// could capture yesterday's winner.
	if err := maybeResetDaily(h.db, sessionID); err != nil {
		slog.Error("daily reset failed", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	prev, err := ensureStatus(h.db, sessionID)
	if err != nil {
		slog.Error("failed to query status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if req.State != prev.State && !models.LegalSuccessor(prev.State, req.State) {
		slog.Warn("irregular status transition", "session_id", sessionID,
			"from", prev.State, "to", req.State)
	}

	// Omitted volunteer_id keeps the previous value
	volunteerID := prev.VolunteerID
	if req.VolunteerID != "" {
		volunteerID = &req.VolunteerID
	}

	// Load the planning data before the transaction; the winner is captured
	// at the moment of hand-off for the volunteer audit record.
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

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var volunteerValue sql.NullString
	if volunteerID != nil {
		volunteerValue = sql.NullString{String: *volunteerID, Valid: true}
	}

	_, err = tx.Exec(`
		UPDATE session_status
		SET state = $1, volunteer_id = $2
		WHERE session_id = $3
	`, req.State, volunteerValue, sessionID)
	if err != nil {
		slog.Error("failed to update status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	// Entering ordering with a volunteer records the hand-off: who fetches,
	// and which option won at that instant. With no options or no votes yet
	// there is nothing to record - a silent no-op, not an error.
	if req.State == models.StateOrdering && req.VolunteerID != "" {
		if err := ensureUser(tx, req.VolunteerID, ""); err != nil {
			slog.Error("failed to ensure volunteer user", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update status")
			return
		}
		if err := linkUserSession(tx, req.VolunteerID, sessionID); err != nil {
			slog.Error("failed to link volunteer to session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update status")
			return
		}

		if len(options) > 0 && len(votes) > 0 {
			winner := Winner(options, votes)
			_, err = tx.Exec(`
				INSERT INTO volunteer (id, session_id, user_id, option_id, date)
				VALUES ($1, $2, $3, $4, $5)
			`, uuid.NewString(), sessionID, req.VolunteerID, winner.ID, time.Now())
			if err != nil {
				slog.Error("failed to insert volunteer record", "error", err)
				middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update status")
				return
			}

			slog.Info("volunteer recorded", "session_id", sessionID,
				"user_id", req.VolunteerID, "option_id", winner.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	touchActivity(h.db, sessionID)

	slog.Info("status updated", "session_id", sessionID, "state", req.State)

	middleware.JSONResponse(w, http.StatusOK, models.Status{
		SessionID:   sessionID,
		State:       req.State,
		VolunteerID: volunteerID,
		LastReset:   prev.LastReset,
	})
}

// ListVolunteers handles GET /sessions/{id}/volunteers
// Returns the append-only hand-off history, oldest first.
func (h *StatusHandler) ListVolunteers(w http.ResponseWriter, r *http.Request) {
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

	rows, err := h.db.Query(`
		SELECT id, session_id, user_id, option_id, date
		FROM volunteer
		WHERE session_id = $1
		ORDER BY date, id
	`, sessionID)
	if err != nil {
		slog.Error("failed to query volunteers", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	volunteers := []models.Volunteer{}
	for rows.Next() {
		var v models.Volunteer
		if err := rows.Scan(&v.ID, &v.SessionID, &v.UserID, &v.OptionID, &v.Date); err != nil {
			slog.Error("failed to scan volunteer", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		volunteers = append(volunteers, v)
	}

	middleware.JSONResponse(w, http.StatusOK, models.VolunteerListResponse{Volunteers: volunteers})
}
