// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/lunchbuddy/server/models"
	"github.com/lunchbuddy/server/testutil"
)

// TestConcurrentVotes fires votes from many users at once. The single pooled
// connection serializes the toggle transactions, so every vote lands.
func TestConcurrentVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewVotingHandler(db, testutil.GetTestConfig())
	sessionID := testutil.CreateTestSession(t, db, models.StatePlanning)
	optionID := testutil.AddTestOption(t, db, sessionID, "Pizza", "alice")

	const voters = 10

	var wg sync.WaitGroup
	errs := make(chan string, voters)

	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			userID := fmt.Sprintf("user%d", n)
			req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/votes",
				models.AddVoteRequest{OptionID: optionID, UserID: userID}, nil)
			req.SetPathValue("id", sessionID)
			w := httptest.NewRecorder()

			handler.AddVote(w, req)

			if w.Code != http.StatusOK {
				errs <- fmt.Sprintf("voter %d got status %d: %s", n, w.Code, w.Body.String())
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM vote WHERE session_id = $1`, sessionID).Scan(&count); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if count != voters {
		t.Errorf("Expected %d votes, got %d", voters, count)
	}
}

// TestConcurrentOptions checks that simultaneous proposals get distinct
// positions; the position is assigned inside the insert transaction.
func TestConcurrentOptions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPlanningHandler(db, testutil.GetTestConfig())
	sessionID := testutil.CreateTestSession(t, db, models.StatePlanning)

	const proposals = 5

	var wg sync.WaitGroup
	for i := 0; i < proposals; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/options",
				models.AddOptionRequest{
					Name:    fmt.Sprintf("Option %d", n),
					AddedBy: fmt.Sprintf("user%d", n),
				}, nil)
			req.SetPathValue("id", sessionID)
			w := httptest.NewRecorder()

			handler.AddOption(w, req)
		}(i)
	}

	wg.Wait()

	rows, err := db.Query(`
		SELECT position FROM lunch_option WHERE session_id = $1 ORDER BY position
	`, sessionID)
	if err != nil {
		t.Fatalf("Failed to query positions: %v", err)
	}
	defer rows.Close()

	seen := map[int]bool{}
	count := 0
	for rows.Next() {
		var position int
		if err := rows.Scan(&position); err != nil {
			t.Fatalf("Failed to scan position: %v", err)
		}
		if seen[position] {
			t.Errorf("Duplicate position %d", position)
		}
		seen[position] = true
		count++
	}
	if count != proposals {
		t.Errorf("Expected %d options, got %d", proposals, count)
	}
	for i := 0; i < proposals; i++ {
		if !seen[i] {
			t.Errorf("Expected position %d to be assigned", i)
		}
	}
}

// TestConcurrentStatusReads polls status while votes arrive, the way the
// board UI behaves with several browsers open.
func TestConcurrentStatusReads(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	votingHandler := NewVotingHandler(db, cfg)
	statusHandler := NewStatusHandler(db, cfg)

	sessionID := testutil.CreateTestSession(t, db, models.StatePlanning)
	optionID := testutil.AddTestOption(t, db, sessionID, "Pizza", "alice")

	var wg sync.WaitGroup
	errs := make(chan string, 20)

	for i := 0; i < 10; i++ {
		wg.Add(2)

		go func(n int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/votes",
				models.AddVoteRequest{OptionID: optionID, UserID: fmt.Sprintf("user%d", n)}, nil)
			req.SetPathValue("id", sessionID)
			w := httptest.NewRecorder()
			votingHandler.AddVote(w, req)

			if w.Code != http.StatusOK {
				errs <- fmt.Sprintf("vote %d got status %d", n, w.Code)
			}
		}(i)

		go func(n int) {
			defer wg.Done()

			req := testutil.MakeRequest("GET", "/sessions/"+sessionID+"/status", nil, nil)
			req.SetPathValue("id", sessionID)
			w := httptest.NewRecorder()
			statusHandler.GetStatus(w, req)

			if w.Code != http.StatusOK {
				errs <- fmt.Sprintf("status read %d got status %d", n, w.Code)
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}
