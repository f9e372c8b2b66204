// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lunchbuddy/server/models"
	"github.com/lunchbuddy/server/testutil"
)

func TestCreateSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPlanningHandler(db, testutil.GetTestConfig())

	req := testutil.MakeRequest("POST", "/sessions", nil, nil)
	w := httptest.NewRecorder()

	handler.CreateSession(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreateSessionResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.SessionID == "" {
		t.Fatal("Expected non-empty session_id")
	}

	// Session and status rows are created together
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM planning_session WHERE id = $1
	`, resp.SessionID).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query session: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 session row, got %d", count)
	}

	var state string
	err = db.QueryRow(`
		SELECT state FROM session_status WHERE session_id = $1
	`, resp.SessionID).Scan(&state)
	if err != nil {
		t.Fatalf("Failed to query status: %v", err)
	}
	if state != models.StatePlanning {
		t.Errorf("Expected new session in planning state, got %s", state)
	}
}

func TestGetSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPlanningHandler(db, testutil.GetTestConfig())
	sessionID := testutil.CreateTestSession(t, db, models.StatePlanning)

	tests := []struct {
		name           string
		sessionID      string
		expectedStatus int
	}{
		{"existing session", sessionID, http.StatusOK},
		{"unknown session", "nope123", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/sessions/"+tt.sessionID, nil, nil)
			req.SetPathValue("id", tt.sessionID)
			w := httptest.NewRecorder()

			handler.GetSession(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var session models.PlanningSession
				testutil.AssertJSON(t, w, &session)
				if session.ID != tt.sessionID {
					t.Errorf("Expected session id %s, got %s", tt.sessionID, session.ID)
				}
			}
		})
	}
}

func TestAddOption(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPlanningHandler(db, testutil.GetTestConfig())
	sessionID := testutil.CreateTestSession(t, db, models.StatePlanning)

	tests := []struct {
		name           string
		sessionID      string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name:      "valid option",
			sessionID: sessionID,
			requestBody: models.AddOptionRequest{
				Name:        "Pizza Place",
				Description: "The one on 5th street",
				AddedBy:     "alice",
				AddedByName: "Alice",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing name",
			sessionID:      sessionID,
			requestBody:    models.AddOptionRequest{AddedBy: "alice"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing added_by",
			sessionID:      sessionID,
			requestBody:    models.AddOptionRequest{Name: "Tacos"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown session",
			sessionID:      "nope123",
			requestBody:    models.AddOptionRequest{Name: "Tacos", AddedBy: "alice"},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/sessions/"+tt.sessionID+"/options", tt.requestBody, nil)
			req.SetPathValue("id", tt.sessionID)
			w := httptest.NewRecorder()

			handler.AddOption(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var option models.LunchOption
				testutil.AssertJSON(t, w, &option)
				if option.ID == "" {
					t.Error("Expected non-empty option id")
				}
				if option.Name != "Pizza Place" {
					t.Errorf("Expected name 'Pizza Place', got '%s'", option.Name)
				}

				// Proposing an option creates the user lazily
				var userName string
				err := db.QueryRow(`SELECT name FROM app_user WHERE id = 'alice'`).Scan(&userName)
				if err != nil {
					t.Fatalf("Expected user to be created: %v", err)
				}
				if userName != "Alice" {
					t.Errorf("Expected user name 'Alice', got '%s'", userName)
				}

				// And records participation
				var linked bool
				err = db.QueryRow(`
					SELECT EXISTS(
						SELECT 1 FROM user_session WHERE user_id = 'alice' AND session_id = $1
					)
				`, tt.sessionID).Scan(&linked)
				if err != nil {
					t.Fatalf("Failed to check user_session: %v", err)
				}
				if !linked {
					t.Error("Expected user to be linked to session")
				}
			}
		})
	}
}

func TestAddOptionAssignsPositions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPlanningHandler(db, testutil.GetTestConfig())
	sessionID := testutil.CreateTestSession(t, db, models.StatePlanning)

	for _, name := range []string{"Pizza", "Tacos", "Sushi"} {
		req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/options",
			models.AddOptionRequest{Name: name, AddedBy: "alice"}, nil)
		req.SetPathValue("id", sessionID)
		w := httptest.NewRecorder()
		handler.AddOption(w, req)
		testutil.AssertStatus(t, w, http.StatusCreated)
	}

	rows, err := db.Query(`
		SELECT name, position FROM lunch_option
		WHERE session_id = $1 ORDER BY position
	`, sessionID)
	if err != nil {
		t.Fatalf("Failed to query options: %v", err)
	}
	defer rows.Close()

	expected := []string{"Pizza", "Tacos", "Sushi"}
	i := 0
	for rows.Next() {
		var name string
		var position int
		if err := rows.Scan(&name, &position); err != nil {
			t.Fatalf("Failed to scan option: %v", err)
		}
		if position != i {
			t.Errorf("Expected position %d, got %d", i, position)
		}
		if name != expected[i] {
			t.Errorf("Expected option %s at position %d, got %s", expected[i], i, name)
		}
		i++
	}
	if i != 3 {
		t.Errorf("Expected 3 options, got %d", i)
	}
}

func TestAddOptionOutsidePlanning(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPlanningHandler(db, testutil.GetTestConfig())

	for _, state := range []string{models.StateOrdering, models.StatePickedUp, models.StateDelivered} {
		t.Run(state, func(t *testing.T) {
			sessionID := testutil.CreateTestSession(t, db, state)

			req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/options",
				models.AddOptionRequest{Name: "Too late", AddedBy: "alice"}, nil)
			req.SetPathValue("id", sessionID)
			w := httptest.NewRecorder()

			handler.AddOption(w, req)

			testutil.AssertStatus(t, w, http.StatusConflict)
		})
	}
}

func TestGetLunchData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPlanningHandler(db, testutil.GetTestConfig())
	sessionID := testutil.CreateTestSession(t, db, models.StatePlanning)

	pizzaID := testutil.AddTestOption(t, db, sessionID, "Pizza", "alice")
	testutil.AddTestOption(t, db, sessionID, "Tacos", "bob")
	testutil.CastTestVote(t, db, sessionID, "alice", pizzaID)

	req := testutil.MakeRequest("GET", "/sessions/"+sessionID+"/lunch-data", nil, nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()

	handler.GetLunchData(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.LunchDataResponse
	testutil.AssertJSON(t, w, &resp)

	if len(resp.Options) != 2 {
		t.Errorf("Expected 2 options, got %d", len(resp.Options))
	}
	if len(resp.Votes) != 1 {
		t.Errorf("Expected 1 vote, got %d", len(resp.Votes))
	}
	if len(resp.Users) != 2 {
		t.Errorf("Expected 2 users, got %d", len(resp.Users))
	}

	// Options come back in insertion order
	if resp.Options[0].Name != "Pizza" || resp.Options[1].Name != "Tacos" {
		t.Errorf("Expected options in insertion order, got %s, %s",
			resp.Options[0].Name, resp.Options[1].Name)
	}
}

func TestGetLunchDataStampsActivityAfterLoad(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPlanningHandler(db, testutil.GetTestConfig())
	sessionID := testutil.CreateTestSession(t, db, models.StatePlanning)

	stale := time.Now().Add(-time.Hour)
	_, err := db.Exec(`
		UPDATE planning_session SET last_activity = $1 WHERE id = $2
	`, stale, sessionID)
	if err != nil {
		t.Fatalf("Failed to backdate activity: %v", err)
	}

	req := testutil.MakeRequest("GET", "/sessions/"+sessionID+"/lunch-data", nil, nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()

	handler.GetLunchData(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var lastActivity time.Time
	err = db.QueryRow(`
		SELECT last_activity FROM planning_session WHERE id = $1
	`, sessionID).Scan(&lastActivity)
	if err != nil {
		t.Fatalf("Failed to query activity: %v", err)
	}
	if !lastActivity.After(stale.Add(30 * time.Minute)) {
		t.Errorf("Expected a successful read to stamp activity, got %v", lastActivity)
	}
}

func TestGetLunchDataUnknownSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPlanningHandler(db, testutil.GetTestConfig())

	req := testutil.MakeRequest("GET", "/sessions/nope123/lunch-data", nil, nil)
	req.SetPathValue("id", "nope123")
	w := httptest.NewRecorder()

	handler.GetLunchData(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestGetLunchDataEmptySession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPlanningHandler(db, testutil.GetTestConfig())
	sessionID := testutil.CreateTestSession(t, db, models.StatePlanning)

	req := testutil.MakeRequest("GET", "/sessions/"+sessionID+"/lunch-data", nil, nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()

	handler.GetLunchData(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	// Empty collections serialize as [], not null
	var raw map[string]json.RawMessage
	testutil.AssertJSON(t, w, &raw)
	for _, field := range []string{"users", "options", "votes"} {
		if string(raw[field]) == "null" {
			t.Errorf("Expected %s to be an empty array, got null", field)
		}
	}
}
