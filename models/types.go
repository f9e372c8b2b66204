// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Session lifecycle states
const (
	StatePlanning  = "planning"
	StateOrdering  = "ordering"
	StatePickedUp  = "picked up"
	StateDelivered = "delivered"
)

// Food request status constants
const (
	RequestPending   = "pending"
	RequestFulfilled = "fulfilled"
)

// LegalNextStates is the forward transition table for the session lifecycle.
// UpdateStatus accepts arbitrary jumps and only consults this to warn-log
// irregular transitions, never to reject them.
var LegalNextStates = map[string][]string{
	StatePlanning:  {StateOrdering},
	StateOrdering:  {StatePickedUp},
	StatePickedUp:  {StateDelivered},
	StateDelivered: {},
}

// ValidState reports whether s is one of the four lifecycle states.
func ValidState(s string) bool {
	switch s {
	case StatePlanning, StateOrdering, StatePickedUp, StateDelivered:
		return true
	}
	return false
}

// LegalSuccessor reports whether next is a forward transition from current.
func LegalSuccessor(current, next string) bool {
	for _, s := range LegalNextStates[current] {
		if s == next {
			return true
		}
	}
	return false
}

// Request types

type AddOptionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AddedBy     string `json:"added_by"`
	AddedByName string `json:"added_by_name,omitempty"`
}

type AddVoteRequest struct {
	OptionID string `json:"option_id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
}

type UpdateStatusRequest struct {
	State       string `json:"state"`
	VolunteerID string `json:"volunteer_id,omitempty"`
}

type AddFoodRequestRequest struct {
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name,omitempty"`
	VolunteerID string `json:"volunteer_id"`
	Request     string `json:"request"`
}

// Response types

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

type LunchDataResponse struct {
	Users   []User        `json:"users"`
	Options []LunchOption `json:"options"`
	Votes   []Vote        `json:"votes"`
}

type VoteListResponse struct {
	Votes []Vote `json:"votes"`
}

type SessionSummaryResponse struct {
	SessionID         string         `json:"session_id"`
	State             string         `json:"state"`
	Tally             map[string]int `json:"tally"`
	Winner            *LunchOption   `json:"winner,omitempty"`
	VoteCount         int            `json:"vote_count"`
	OptionCount       int            `json:"option_count"`
	VotingComplete    bool           `json:"voting_complete"`
	LastActivity      time.Time      `json:"last_activity"`
	LastActivityHuman string         `json:"last_activity_human"`
}

type VolunteerListResponse struct {
	Volunteers []Volunteer `json:"volunteers"`
}

type FoodRequestListResponse struct {
	Requests []FoodRequest `json:"requests"`
}

type UserSessionsResponse struct {
	Sessions []UserSessionSummary `json:"sessions"`
}

type UserSessionSummary struct {
	SessionID    string    `json:"session_id"`
	State        string    `json:"state"`
	LinkedAt     time.Time `json:"linked_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Domain types

type PlanningSession struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

type User struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

type LunchOption struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AddedBy     string    `json:"added_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type Vote struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	OptionID  string    `json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Volunteer struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	OptionID  string    `json:"option_id"`
	Date      time.Time `json:"date"`
}

type FoodRequest struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	VolunteerID string    `json:"volunteer_id"`
	Request     string    `json:"request"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type Status struct {
	SessionID   string    `json:"session_id"`
	State       string    `json:"state"`
	VolunteerID *string   `json:"volunteer_id"`
	LastReset   time.Time `json:"last_reset"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
