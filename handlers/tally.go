// Copyright (c) 2025 The LunchBuddy Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"github.com/lunchbuddy/server/models"
)

// Tally counts votes per option. Options with zero votes are present in the
// result with a count of zero, not omitted.
func Tally(options []models.LunchOption, votes []models.Vote) map[string]int {
	counts := make(map[string]int, len(options))
	for _, opt := range options {
		counts[opt.ID] = 0
	}
	for _, v := range votes {
		counts[v.OptionID]++
	}
	return counts
}

// Winner returns the option with the highest vote count. Ties are broken by
// insertion order: the first option among those tied, as it appears in the
// options slice. Returns nil when there are no options.
func Winner(options []models.LunchOption, votes []models.Vote) *models.LunchOption {
	if len(options) == 0 {
		return nil
	}

	counts := Tally(options, votes)

	best := 0
	for i := 1; i < len(options); i++ {
		if counts[options[i].ID] > counts[options[best].ID] {
			best = i
		}
	}
	return &options[best]
}

// VotingComplete reports whether the total number of votes cast across all
// options has reached the threshold. This is a global count, not a
// "every participant voted" check.
func VotingComplete(votes []models.Vote, threshold int) bool {
	return len(votes) >= threshold
}
