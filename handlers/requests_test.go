// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lunchbuddy/server/models"
	"github.com/lunchbuddy/server/testutil"
)

func TestAddFoodRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewRequestHandler(db, testutil.GetTestConfig())
	sessionID := testutil.CreateTestSession(t, db, models.StateOrdering)

	tests := []struct {
		name           string
		sessionID      string
		requestBody    models.AddFoodRequestRequest
		expectedStatus int
	}{
		{
			name:      "valid request",
			sessionID: sessionID,
			requestBody: models.AddFoodRequestRequest{
				UserID:      "alice",
				VolunteerID: "bob",
				Request:     "pad thai, no peanuts",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:      "missing user_id",
			sessionID: sessionID,
			requestBody: models.AddFoodRequestRequest{
				VolunteerID: "bob",
				Request:     "pad thai",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "missing volunteer_id",
			sessionID: sessionID,
			requestBody: models.AddFoodRequestRequest{
				UserID:  "alice",
				Request: "pad thai",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "missing request text",
			sessionID: sessionID,
			requestBody: models.AddFoodRequestRequest{
				UserID:      "alice",
				VolunteerID: "bob",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "unknown session",
			sessionID: "nope123",
			requestBody: models.AddFoodRequestRequest{
				UserID:      "alice",
				VolunteerID: "bob",
				Request:     "pad thai",
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/sessions/"+tt.sessionID+"/requests", tt.requestBody, nil)
			req.SetPathValue("id", tt.sessionID)
			w := httptest.NewRecorder()

			handler.AddFoodRequest(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var fr models.FoodRequest
				testutil.AssertJSON(t, w, &fr)
				if fr.ID == "" {
					t.Error("Expected non-empty request id")
				}
				if fr.Status != models.RequestPending {
					t.Errorf("Expected pending status, got %s", fr.Status)
				}

				// Ordering creates the requesting user lazily
				var exists bool
				err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM app_user WHERE id = 'alice')`).Scan(&exists)
				if err != nil {
					t.Fatalf("Failed to check user: %v", err)
				}
				if !exists {
					t.Error("Expected user to be created")
				}
			}
		})
	}
}

func TestAddFoodRequestDuplicatesAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewRequestHandler(db, testutil.GetTestConfig())
	sessionID := testutil.CreateTestSession(t, db, models.StateOrdering)

	// The same user may submit several requests; the data layer keeps all of them
	for _, text := range []string{"pad thai", "actually, pho"} {
		req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/requests",
			models.AddFoodRequestRequest{UserID: "alice", VolunteerID: "bob", Request: text}, nil)
		req.SetPathValue("id", sessionID)
		w := httptest.NewRecorder()
		handler.AddFoodRequest(w, req)
		testutil.AssertStatus(t, w, http.StatusCreated)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM food_request WHERE session_id = $1`, sessionID).Scan(&count); err != nil {
		t.Fatalf("Failed to count requests: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 requests, got %d", count)
	}
}

func TestAddFoodRequestNoPhaseGate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewRequestHandler(db, testutil.GetTestConfig())

	// Requests are accepted in every lifecycle state
	for _, state := range []string{models.StatePlanning, models.StateOrdering, models.StatePickedUp, models.StateDelivered} {
		t.Run(state, func(t *testing.T) {
			sessionID := testutil.CreateTestSession(t, db, state)

			req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/requests",
				models.AddFoodRequestRequest{UserID: "alice", VolunteerID: "bob", Request: "anything"}, nil)
			req.SetPathValue("id", sessionID)
			w := httptest.NewRecorder()
			handler.AddFoodRequest(w, req)

			testutil.AssertStatus(t, w, http.StatusCreated)
		})
	}
}

func TestGetFoodRequests(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewRequestHandler(db, testutil.GetTestConfig())
	sessionID := testutil.CreateTestSession(t, db, models.StateOrdering)

	for _, r := range []models.AddFoodRequestRequest{
		{UserID: "alice", VolunteerID: "bob", Request: "pad thai"},
		{UserID: "carol", VolunteerID: "bob", Request: "spring rolls"},
	} {
		req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/requests", r, nil)
		req.SetPathValue("id", sessionID)
		w := httptest.NewRecorder()
		handler.AddFoodRequest(w, req)
		testutil.AssertStatus(t, w, http.StatusCreated)
	}

	req := testutil.MakeRequest("GET", "/sessions/"+sessionID+"/requests", nil, nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.GetFoodRequests(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.FoodRequestListResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Requests) != 2 {
		t.Fatalf("Expected 2 requests, got %d", len(resp.Requests))
	}
	if resp.Requests[0].Request != "pad thai" {
		t.Errorf("Expected requests in insertion order, got '%s' first", resp.Requests[0].Request)
	}
}

func TestGetFoodRequestsUnknownSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewRequestHandler(db, testutil.GetTestConfig())

	req := testutil.MakeRequest("GET", "/sessions/nope123/requests", nil, nil)
	req.SetPathValue("id", "nope123")
	w := httptest.NewRecorder()
	handler.GetFoodRequests(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}
