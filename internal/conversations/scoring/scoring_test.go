package scoring

import (
	"testing"
	"time"
)

func datePtr(t time.Time) *time.Time { return &t }

func floatPtr(f float64) *float64 { return &f }

func TestScoreBase(t *testing.T) {
	if got := Score(Input{}); got != 10 {
		t.Fatalf("expected base score 10, got %d", got)
	}
}

func TestScoreFullyQualifiedLeadHits100(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := Input{
		IsQualified: true,
		IsBookTour:  true,
		MoveInDate:  datePtr(now.AddDate(0, 0, 10)),
		PriceMin:    floatPtr(1200),
		PriceMax:    floatPtr(1800),
		HasEmail:    true,
		HasPhone:    true,
		Now:         now,
	}

	// 10 + 30 + 40 + 20 + 10 + 15, clamped to 100.
	if got := Score(in); got != 100 {
		t.Fatalf("expected clamped score 100, got %d", got)
	}
}

func TestScoreMoveInWindows(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		moveIn time.Time
		want   int
	}{
		{"within 30 days", now.AddDate(0, 0, 20), 10 + 20},
		{"within 90 days", now.AddDate(0, 0, 60), 10 + 10},
		{"beyond 90 days", now.AddDate(0, 0, 120), 10 + 5},
	}

	for _, tc := range cases {
		in := Input{MoveInDate: datePtr(tc.moveIn), Now: now}
		if got := Score(in); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestScoreContactCompleteness(t *testing.T) {
	if got := Score(Input{HasEmail: true, HasPhone: true}); got != 25 {
		t.Fatalf("both contacts: expected 25, got %d", got)
	}
	if got := Score(Input{HasEmail: true}); got != 20 {
		t.Fatalf("email only: expected 20, got %d", got)
	}
	if got := Score(Input{HasPhone: true}); got != 20 {
		t.Fatalf("phone only: expected 20, got %d", got)
	}
}

func TestScoreBudgetRequiresBothBounds(t *testing.T) {
	if got := Score(Input{PriceMin: floatPtr(900)}); got != 10 {
		t.Fatalf("single bound must not score, got %d", got)
	}
	if got := Score(Input{PriceMin: floatPtr(900), PriceMax: floatPtr(1400)}); got != 20 {
		t.Fatalf("both bounds: expected 20, got %d", got)
	}
}

func TestScoreMonotonicInEachFlag(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	baseline := Input{
		MoveInDate: datePtr(now.AddDate(0, 0, 45)),
		PriceMin:   floatPtr(1000),
		PriceMax:   floatPtr(1500),
		HasEmail:   true,
		Now:        now,
	}

	flip := []func(Input) Input{
		func(in Input) Input { in.IsQualified = true; return in },
		func(in Input) Input { in.IsBookTour = true; return in },
		func(in Input) Input { in.HasPhone = true; return in },
	}

	before := Score(baseline)
	for i, f := range flip {
		after := Score(f(baseline))
		if after < before {
			t.Fatalf("flag %d: score decreased from %d to %d", i, before, after)
		}
	}
}

func TestScoreBounded(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := Input{
		IsQualified: true,
		IsBookTour:  true,
		MoveInDate:  datePtr(now.AddDate(0, 0, 1)),
		PriceMin:    floatPtr(0),
		PriceMax:    floatPtr(9999),
		HasEmail:    true,
		HasPhone:    true,
		Now:         now,
	}
	if got := Score(in); got < 0 || got > 100 {
		t.Fatalf("score out of bounds: %d", got)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := Input{IsQualified: true, HasEmail: true, Now: now}
	first := Score(in)
	second := Score(in)
	if first != second {
		t.Fatalf("score not re-entrant: %d vs %d", first, second)
	}
}
