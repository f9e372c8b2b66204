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

type RequestHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewRequestHandler(db *sql.DB, cfg cliparse.Config) *RequestHandler {
	return &RequestHandler{db: db, cfg: cfg}
}

// AddFoodRequest handles POST /sessions/{id}/requests
// Appends unconditionally: no phase gate and no duplicate check. The board UI
// enforces one request per user by filtering; the stored data does not.
// Status always starts as pending.
func (h *RequestHandler) AddFoodRequest(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req models.AddFoodRequestRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.VolunteerID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "volunteer_id is required")
		return
	}
	if req.Request == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "request is required")
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

	foodRequest := models.FoodRequest{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		UserID:      req.UserID,
		VolunteerID: req.VolunteerID,
		Request:     req.Request,
		Status:      models.RequestPending,
		CreatedAt:   time.Now(),
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	if err := ensureUser(tx, req.UserID, req.UserName); err != nil {
		slog.Error("failed to ensure user", "error", err, "user_id", req.UserID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save request")
		return
	}
	if err := linkUserSession(tx, req.UserID, sessionID); err != nil {
		slog.Error("failed to link user to session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save request")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO food_request (id, session_id, user_id, volunteer_id, request, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, foodRequest.ID, sessionID, foodRequest.UserID, foodRequest.VolunteerID,
		foodRequest.Request, foodRequest.Status, foodRequest.CreatedAt)
	if err != nil {
		slog.Error("failed to insert food request", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save request")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save request")
		return
	}

	touchActivity(h.db, sessionID)

	slog.Info("food request added", "session_id", sessionID, "user_id", req.UserID)

	middleware.JSONResponse(w, http.StatusCreated, foodRequest)
}

// GetFoodRequests handles GET /sessions/{id}/requests
// Returns all requests in insertion order, regardless of status.
func (h *RequestHandler) GetFoodRequests(w http.ResponseWriter, r *http.Request) {
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
		SELECT id, session_id, user_id, volunteer_id, request, status, created_at
		FROM food_request
		WHERE session_id = $1
		ORDER BY created_at, id
	`, sessionID)
	if err != nil {
		slog.Error("failed to query food requests", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	requests := []models.FoodRequest{}
	for rows.Next() {
		var fr models.FoodRequest
		if err := rows.Scan(&fr.ID, &fr.SessionID, &fr.UserID, &fr.VolunteerID,
			&fr.Request, &fr.Status, &fr.CreatedAt); err != nil {
			slog.Error("failed to scan food request", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		requests = append(requests, fr)
	}

	middleware.JSONResponse(w, http.StatusOK, models.FoodRequestListResponse{Requests: requests})
}
