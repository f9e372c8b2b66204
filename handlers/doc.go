// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the LunchBuddy API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - PlanningHandler: Session registry, lunch options, lunch data reads
  - VotingHandler: Vote toggling and tally summaries
  - StatusHandler: Lifecycle state, volunteer hand-off audit
  - RequestHandler: Individual food orders
  - UserHandler: Lazily created user records and participation history

Handlers are created via constructor functions that accept *sql.DB and Config:

	planningHandler := handlers.NewPlanningHandler(db, cfg)

# Session Lifecycle

Sessions progress through four states: planning → ordering → "picked up" → delivered

	POST /sessions                  → CreateSession
	POST /sessions/{id}/options    → AddOption (planning only)
	POST /sessions/{id}/votes      → AddVote (planning only, toggle)
	PUT  /sessions/{id}/status     → UpdateStatus (records volunteer on ordering)
	POST /sessions/{id}/requests   → AddFoodRequest

UpdateStatus deliberately accepts any state jump so a group can correct a
mistaken update, but warn-logs moves that skip or reverse the lifecycle.

# Daily Reset

Sessions are day-scoped. GetStatus, GetLunchData, GetSummary, and UpdateStatus
compare the stored reset stamp against today's date and clear options, votes,
volunteers, and requests when a new day has started. There is no background
scheduler; an idle session is reset on its next access, and a cross-day status
write runs the reset before it applies.

# Tally Logic

Pure vote aggregation lives in tally.go:

	counts := handlers.Tally(options, votes)
	winner := handlers.Winner(options, votes)

Winner ties break by option insertion order, so results are stable while the
board UI polls.
*/
package handlers
