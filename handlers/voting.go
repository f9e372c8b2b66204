// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/lunchbuddy/server/cliparse"
	"github.com/lunchbuddy/server/middleware"
	"github.com/lunchbuddy/server/models"
)

type VotingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg}
}

// AddVote handles POST /sessions/{id}/votes
// Toggle semantics: an identical (user, option) vote is removed; otherwise a
// new vote is appended. Either way the full updated vote collection is
// returned so the polling UI can replace its local copy.
func (h *VotingHandler) AddVote(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req models.AddVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_id is required")
		return
	}
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
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

	// Votes are only accepted while the session is still planning
	status, err := ensureStatus(h.db, sessionID)
	if err != nil {
		slog.Error("failed to query status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if status.State != models.StatePlanning {
		middleware.ErrorResponse(w, http.StatusConflict, "Voting is closed outside the planning phase")
		return
	}

	// The vote must reference an option that exists in this session
	var optionExists bool
	err = h.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM lunch_option
			WHERE session_id = $1 AND id = $2
		)
	`, sessionID, req.OptionID).Scan(&optionExists)
	if err != nil {
		slog.Error("failed to verify option", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !optionExists {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid option_id: "+req.OptionID)
		return
	}

	// Begin transaction for the toggle
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	if err := ensureUser(tx, req.UserID, req.UserName); err != nil {
		slog.Error("failed to ensure user", "error", err, "user_id", req.UserID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}
	if err := linkUserSession(tx, req.UserID, sessionID); err != nil {
		slog.Error("failed to link user to session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	var existingVoteID string
	err = tx.QueryRow(`
		SELECT id FROM vote
		WHERE session_id = $1 AND user_id = $2 AND option_id = $3
	`, sessionID, req.UserID, req.OptionID).Scan(&existingVoteID)

	removed := err == nil
	if removed {
		_, err = tx.Exec(`DELETE FROM vote WHERE id = $1`, existingVoteID)
		if err != nil {
			slog.Error("failed to delete vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
			return
		}
	} else if err == sql.ErrNoRows {
		_, err = tx.Exec(`
			INSERT INTO vote (id, session_id, user_id, option_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.NewString(), sessionID, req.UserID, req.OptionID, time.Now())
		if err != nil {
			slog.Error("failed to insert vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
			return
		}
	} else {
		slog.Error("failed to query existing vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	touchActivity(h.db, sessionID)

	votes, err := loadVotes(h.db, sessionID)
	if err != nil {
		slog.Error("failed to query votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("vote toggled", "session_id", sessionID, "user_id", req.UserID,
		"option_id", req.OptionID, "removed", removed)

	middleware.JSONResponse(w, http.StatusOK, models.VoteListResponse{Votes: votes})
}

// GetSummary handles GET /sessions/{id}/summary
// Returns the current tally, the leading option, and whether voting has
// reached the volunteer threshold.
func (h *VotingHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
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

	// Same lazy-reset check as the other read entry points; a client that
	// only polls the summary must not see yesterday's tally past midnight.
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

	middleware.JSONResponse(w, http.StatusOK, models.SessionSummaryResponse{
		SessionID:         sessionID,
		State:             status.State,
		Tally:             Tally(options, votes),
		Winner:            Winner(options, votes),
		VoteCount:         len(votes),
		OptionCount:       len(options),
		VotingComplete:    VotingComplete(votes, h.cfg.VoteThreshold),
		LastActivity:      session.LastActivity,
		LastActivityHuman: humanize.Time(session.LastActivity),
	})
}
