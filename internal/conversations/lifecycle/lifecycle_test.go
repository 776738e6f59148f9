package lifecycle

import "testing"

func TestDerivePreQualifiedTransition(t *testing.T) {
	prev := Snapshot{Status: StatusNew}
	next := Snapshot{Status: StatusNew, PreQualified: true}

	result := Derive(prev, next)

	if result.Status != StatusQualified {
		t.Fatalf("expected status %q, got %q", StatusQualified, result.Status)
	}
	if !result.Changed {
		t.Fatal("expected a status change")
	}
	if result.NotificationType != NotificationNewQualifiedLead {
		t.Fatalf("expected notification %q, got %q", NotificationNewQualifiedLead, result.NotificationType)
	}
}

func TestDeriveBookTourTransition(t *testing.T) {
	prev := Snapshot{Status: StatusQualified, PreQualified: true}
	next := Snapshot{Status: StatusQualified, PreQualified: true, IsBookTour: true}

	result := Derive(prev, next)

	if result.Status != StatusTourScheduled {
		t.Fatalf("expected status %q, got %q", StatusTourScheduled, result.Status)
	}
	if result.NotificationType != NotificationTourScheduled {
		t.Fatalf("expected notification %q, got %q", NotificationTourScheduled, result.NotificationType)
	}
}

func TestDeriveBothFlagsFlipTourWins(t *testing.T) {
	prev := Snapshot{Status: StatusNew}
	next := Snapshot{Status: StatusNew, PreQualified: true, IsBookTour: true}

	result := Derive(prev, next)

	if result.Status != StatusTourScheduled {
		t.Fatalf("tie-break: expected %q, got %q", StatusTourScheduled, result.Status)
	}
	if result.NotificationType != NotificationTourScheduled {
		t.Fatalf("tie-break: expected notification %q, got %q", NotificationTourScheduled, result.NotificationType)
	}
}

func TestDeriveIdenticalUpdateIsIdempotent(t *testing.T) {
	prev := Snapshot{Status: StatusQualified, PreQualified: true}
	next := Snapshot{Status: StatusQualified, PreQualified: true}

	result := Derive(prev, next)

	if result.Changed {
		t.Fatal("identical update must not derive a change")
	}
	if result.NotificationType != "" {
		t.Fatalf("identical update must not emit a notification, got %q", result.NotificationType)
	}
}

func TestDeriveRewritingSameStatusEmitsNothing(t *testing.T) {
	prev := Snapshot{Status: StatusTourScheduled, PreQualified: true, IsBookTour: true}
	next := Snapshot{Status: StatusTourScheduled, PreQualified: true, IsBookTour: true}

	result := Derive(prev, next)

	if result.Changed || result.NotificationType != "" {
		t.Fatalf("re-writing the same status must be a no-op, got %+v", result)
	}
}

func TestDeriveFlagAlreadySetDoesNotRefire(t *testing.T) {
	// pre_qualified stays true while the manager moves the lead forward:
	// the flag alone must not re-derive qualified.
	prev := Snapshot{Status: StatusContacted, PreQualified: true}
	next := Snapshot{Status: StatusContacted, PreQualified: true}

	result := Derive(prev, next)

	if result.Status != StatusContacted {
		t.Fatalf("expected manager-set status preserved, got %q", result.Status)
	}
	if result.NotificationType != "" {
		t.Fatal("no transition means no notification")
	}
}

func TestDeriveManagerStatusPassesThrough(t *testing.T) {
	prev := Snapshot{Status: StatusQualified, PreQualified: true}
	next := Snapshot{Status: StatusConverted, PreQualified: true}

	result := Derive(prev, next)

	if result.Status != StatusConverted {
		t.Fatalf("expected %q, got %q", StatusConverted, result.Status)
	}
	if !result.Changed {
		t.Fatal("expected a change")
	}
	if result.NotificationType != "" {
		t.Fatal("manager-driven states emit no automated notification")
	}
}

func TestDeriveEmptyStatusDefaultsToNew(t *testing.T) {
	result := Derive(Snapshot{}, Snapshot{})
	if result.Status != StatusNew {
		t.Fatalf("expected default %q, got %q", StatusNew, result.Status)
	}
	if result.Changed {
		t.Fatal("defaulting must not register as a transition")
	}
}

func TestDeriveBookTourNeverRevertsToNew(t *testing.T) {
	prev := Snapshot{Status: StatusTourScheduled, IsBookTour: true}
	next := Snapshot{Status: "", IsBookTour: true}

	result := Derive(prev, next)

	if result.Status == StatusNew {
		t.Fatal("a toured conversation must never revert to new")
	}
	if result.Status != StatusTourScheduled {
		t.Fatalf("expected status preserved, got %q", result.Status)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusNew, StatusQualified, StatusTourScheduled, StatusContacted, StatusScheduled, StatusConverted} {
		if !ValidStatus(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	if ValidStatus("archived") {
		t.Fatal("unknown status accepted")
	}
}
