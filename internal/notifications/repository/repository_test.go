package repository

import (
	"testing"
	"time"

	"leasing_portal_backend/platform/apperr"
)

func ts(minute int) *time.Time {
	t := time.Date(2026, 8, 1, 12, minute, 0, 0, time.UTC)
	return &t
}

func readNotification() LeadNotification {
	return LeadNotification{
		Status: StatusRead,
		SentAt: ts(0),
		ReadAt: ts(10),
	}
}

func mustRank(t *testing.T, status string) int {
	t.Helper()
	rank, ok := statusRank(status)
	if !ok {
		t.Fatalf("unknown status %q", status)
	}
	return rank
}

func TestCheckTransitionRejectsStatusRewind(t *testing.T) {
	current := readNotification()

	err := checkTransition(current, StatusUpdate{Status: StatusSent}, mustRank(t, StatusSent))
	if !apperr.Is(err, apperr.KindInvalidRange) {
		t.Fatalf("read -> sent: got %v, want InvalidRange", err)
	}
}

func TestCheckTransitionRejectsReadAtRewindOnSameStatus(t *testing.T) {
	current := readNotification()

	// read -> read with a readAt earlier than the stored read_at but still
	// after sent_at.
	update := StatusUpdate{Status: StatusRead, ReadAt: ts(5)}
	err := checkTransition(current, update, mustRank(t, StatusRead))
	if !apperr.Is(err, apperr.KindInvalidRange) {
		t.Fatalf("read_at rewind: got %v, want InvalidRange", err)
	}
}

func TestCheckTransitionRejectsReadAtBeforeSentAt(t *testing.T) {
	current := LeadNotification{Status: StatusSent, SentAt: ts(10)}

	update := StatusUpdate{Status: StatusRead, ReadAt: ts(5)}
	err := checkTransition(current, update, mustRank(t, StatusRead))
	if !apperr.Is(err, apperr.KindInvalidRange) {
		t.Fatalf("read_at before sent_at: got %v, want InvalidRange", err)
	}
}

func TestCheckTransitionRejectsResponseAtRewind(t *testing.T) {
	current := readNotification()
	current.Status = StatusResponded
	current.ResponseAt = ts(20)

	// responded -> responded with an earlier responseAt.
	update := StatusUpdate{Status: StatusResponded, ResponseAt: ts(15)}
	err := checkTransition(current, update, mustRank(t, StatusResponded))
	if !apperr.Is(err, apperr.KindInvalidRange) {
		t.Fatalf("response_at rewind: got %v, want InvalidRange", err)
	}
}

func TestCheckTransitionRejectsResponseAtBeforeStoredReadAt(t *testing.T) {
	current := readNotification()

	update := StatusUpdate{Status: StatusResponded, ResponseAt: ts(5)}
	err := checkTransition(current, update, mustRank(t, StatusResponded))
	if !apperr.Is(err, apperr.KindInvalidRange) {
		t.Fatalf("response_at before read_at: got %v, want InvalidRange", err)
	}
}

func TestCheckTransitionRejectsResponseAtBeforeNewReadAt(t *testing.T) {
	current := LeadNotification{Status: StatusSent, SentAt: ts(0)}

	update := StatusUpdate{Status: StatusResponded, ReadAt: ts(10), ResponseAt: ts(5)}
	err := checkTransition(current, update, mustRank(t, StatusResponded))
	if !apperr.Is(err, apperr.KindInvalidRange) {
		t.Fatalf("response_at before new read_at: got %v, want InvalidRange", err)
	}
}

func TestCheckTransitionAllowsForwardProgress(t *testing.T) {
	cases := []struct {
		name    string
		current LeadNotification
		update  StatusUpdate
	}{
		{
			name:    "pending to sent",
			current: LeadNotification{Status: StatusPending},
			update:  StatusUpdate{Status: StatusSent},
		},
		{
			name:    "sent to read with explicit timestamp",
			current: LeadNotification{Status: StatusSent, SentAt: ts(0)},
			update:  StatusUpdate{Status: StatusRead, ReadAt: ts(10)},
		},
		{
			name:    "read to responded",
			current: readNotification(),
			update:  StatusUpdate{Status: StatusResponded, ResponseAt: ts(20)},
		},
		{
			name:    "same status same timestamp is idempotent",
			current: readNotification(),
			update:  StatusUpdate{Status: StatusRead, ReadAt: ts(10)},
		},
		{
			name:    "timestamps default when omitted",
			current: readNotification(),
			update:  StatusUpdate{Status: StatusResponded},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rank := mustRank(t, tc.update.Status)
			if err := checkTransition(tc.current, tc.update, rank); err != nil {
				t.Fatalf("checkTransition: %v", err)
			}
		})
	}
}
