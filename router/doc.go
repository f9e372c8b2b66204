// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the LunchBuddy API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Session registry and planning:

	POST /sessions                   - Create planning session
	GET  /sessions/{id}              - Session metadata (deep-link check)
	GET  /sessions/{id}/lunch-data   - Users, options, votes
	POST /sessions/{id}/options      - Propose an option (planning only)

Voting:

	POST /sessions/{id}/votes   - Toggle a vote (planning only)
	GET  /sessions/{id}/summary - Tally, winner, voting-complete flag

Lifecycle:

	GET /sessions/{id}/status     - Current status (runs daily-reset check)
	PUT /sessions/{id}/status     - Advance status / record volunteer
	GET /sessions/{id}/volunteers - Hand-off audit history

Food requests:

	POST /sessions/{id}/requests - Submit an order
	GET  /sessions/{id}/requests - List orders

Users:

	GET /users/{id}          - User record
	GET /users/{id}/sessions - Sessions the user participated in

# Handler Initialization

The router creates handler instances with dependency injection; all handlers
receive the database connection and configuration.
*/
package router
