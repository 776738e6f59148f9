// Package scoring computes lead scores for conversations. Score is a pure
// function; persistence happens in the conversations service.
package scoring

import "time"

// Score bounds and weights.
const (
	base            = 10
	qualifiedWeight = 30
	tourWeight      = 40
	moveInSoon      = 20 // move-in within 30 days
	moveInNear      = 10 // move-in within 90 days
	moveInFar       = 5  // move-in date known but further out
	budgetWeight    = 10 // both price bounds present
	fullContact     = 15 // email and phone known
	partialContact  = 10 // exactly one of email, phone
	maxScore        = 100
	soonWindowDays  = 30
	nearWindowDays  = 90
)

// Input carries the conversation and lead attributes that contribute to
// the score.
type Input struct {
	IsQualified bool
	IsBookTour  bool
	MoveInDate  *time.Time
	PriceMin    *float64
	PriceMax    *float64
	HasEmail    bool
	HasPhone    bool
	// Now anchors the move-in window; zero means time.Now().
	Now time.Time
}

// Score computes the lead score in [0, 100]. Each contributing signal only
// ever adds points, so the score is monotonic non-decreasing in every flag.
func Score(in Input) int {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	score := base

	if in.IsQualified {
		score += qualifiedWeight
	}
	if in.IsBookTour {
		score += tourWeight
	}

	if in.MoveInDate != nil {
		days := int(in.MoveInDate.Sub(now).Hours() / 24)
		switch {
		case days <= soonWindowDays:
			score += moveInSoon
		case days <= nearWindowDays:
			score += moveInNear
		default:
			score += moveInFar
		}
	}

	if in.PriceMin != nil && in.PriceMax != nil {
		score += budgetWeight
	}

	switch {
	case in.HasEmail && in.HasPhone:
		score += fullContact
	case in.HasEmail || in.HasPhone:
		score += partialContact
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}
