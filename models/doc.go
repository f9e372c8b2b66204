// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - AddOptionRequest: name, description, added_by
  - AddVoteRequest: option_id, user_id
  - UpdateStatusRequest: state, volunteer_id (optional)
  - AddFoodRequestRequest: user_id, volunteer_id, request

# Response Types

Types for JSON responses:

  - CreateSessionResponse: session_id
  - LunchDataResponse: users, options, votes
  - VoteListResponse: votes (full collection after a toggle)
  - SessionSummaryResponse: tally, winner, voting_complete
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - PlanningSession: session identity and activity stamp
  - User: self-asserted identity, global across sessions
  - LunchOption: candidate restaurant/food choice
  - Vote: one user's vote on one option
  - Volunteer: append-only hand-off audit record
  - FoodRequest: an individual order
  - Status: authoritative lifecycle pointer, one per session

# Constants

Lifecycle states:

	StatePlanning  = "planning"
	StateOrdering  = "ordering"
	StatePickedUp  = "picked up"
	StateDelivered = "delivered"

Food request status:

	RequestPending   = "pending"
	RequestFulfilled = "fulfilled"

LegalNextStates encodes the forward transition table; UpdateStatus uses it
only for warn-logging since arbitrary jumps are accepted.
*/
package models
