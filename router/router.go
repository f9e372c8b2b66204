// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/lunchbuddy/server/cliparse"
	"github.com/lunchbuddy/server/handlers"
	"github.com/lunchbuddy/server/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	planningHandler := handlers.NewPlanningHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	statusHandler := handlers.NewStatusHandler(db, cfg)
	requestHandler := handlers.NewRequestHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session registry and planning
	mux.HandleFunc("POST /sessions", middleware.WithLogging(planningHandler.CreateSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(planningHandler.GetSession))
	mux.HandleFunc("GET /sessions/{id}/lunch-data", middleware.WithLogging(planningHandler.GetLunchData))
	mux.HandleFunc("POST /sessions/{id}/options", middleware.WithLogging(planningHandler.AddOption))

	// Voting
	mux.HandleFunc("POST /sessions/{id}/votes", middleware.WithLogging(votingHandler.AddVote))
	mux.HandleFunc("GET /sessions/{id}/summary", middleware.WithLogging(votingHandler.GetSummary))

	// Lifecycle
	mux.HandleFunc("GET /sessions/{id}/status", middleware.WithLogging(statusHandler.GetStatus))
	mux.HandleFunc("PUT /sessions/{id}/status", middleware.WithLogging(statusHandler.UpdateStatus))
	mux.HandleFunc("GET /sessions/{id}/volunteers", middleware.WithLogging(statusHandler.ListVolunteers))

	// Food requests
	mux.HandleFunc("POST /sessions/{id}/requests", middleware.WithLogging(requestHandler.AddFoodRequest))
	mux.HandleFunc("GET /sessions/{id}/requests", middleware.WithLogging(requestHandler.GetFoodRequests))

	// Users
	mux.HandleFunc("GET /users/{id}", middleware.WithLogging(userHandler.GetUser))
	mux.HandleFunc("GET /users/{id}/sessions", middleware.WithLogging(userHandler.GetUserSessions))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("lunchbuddy API v1"))
	})

	return mux
}
