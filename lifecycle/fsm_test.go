package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/msafryx/carelum-backend/models"
)

var (
	now    = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	parent = Actor{ID: "parent-1", Role: models.RoleParent}
	sitter = Actor{ID: "sitter-1", Role: models.RoleSitter}
)

func session(status models.SessionStatus) models.Session {
	return models.Session{
		ID:          "session-1",
		ParentID:    parent.ID,
		Status:      status,
		SearchScope: models.ScopeNearby,
		StartTime:   now.Add(2 * time.Hour),
	}
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from models.SessionStatus
		to   models.SessionStatus
		ok   bool
	}{
		{models.StatusRequested, models.StatusAccepted, true},
		{models.StatusRequested, models.StatusCancelled, true},
		{models.StatusRequested, models.StatusActive, false},
		{models.StatusRequested, models.StatusCompleted, false},
		{models.StatusAccepted, models.StatusActive, true},
		{models.StatusAccepted, models.StatusCancelled, true},
		{models.StatusAccepted, models.StatusCompleted, false},
		{models.StatusAccepted, models.StatusRequested, false},
		{models.StatusActive, models.StatusCompleted, true},
		{models.StatusActive, models.StatusCancelled, true},
		{models.StatusActive, models.StatusAccepted, false},
	}
	for _, tc := range cases {
		_, err := Transition(session(tc.from), Request{Target: tc.to, Now: now}, sitter)
		if tc.ok && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
		if !tc.ok {
			var terr *TransitionError
			if !errors.As(err, &terr) {
				t.Errorf("%s -> %s: want TransitionError, got %v", tc.from, tc.to, err)
			}
		}
	}
}

func TestTerminalStatesLocked(t *testing.T) {
	for _, from := range []models.SessionStatus{models.StatusCompleted, models.StatusCancelled} {
		for _, to := range []models.SessionStatus{
			models.StatusRequested, models.StatusAccepted, models.StatusActive,
			models.StatusCompleted, models.StatusCancelled,
		} {
			if _, err := Transition(session(from), Request{Target: to, Now: now}, sitter); err == nil {
				t.Errorf("%s -> %s: expected rejection", from, to)
			}
		}
	}
}

func TestParentCannotAcceptOrComplete(t *testing.T) {
	if _, err := Transition(session(models.StatusRequested), Request{Target: models.StatusAccepted, Now: now}, parent); err == nil {
		t.Fatal("parent accepted a session")
	}
	if _, err := Transition(session(models.StatusAccepted), Request{Target: models.StatusActive, Now: now}, parent); err == nil {
		t.Fatal("parent started a session")
	}
	if _, err := Transition(session(models.StatusActive), Request{Target: models.StatusCompleted, Now: now}, parent); err == nil {
		t.Fatal("parent completed a session")
	}
}

func TestAcceptAssignsSitter(t *testing.T) {
	patch, err := Transition(session(models.StatusRequested), Request{Target: models.StatusAccepted, Now: now}, sitter)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if patch["sitter_id"] != sitter.ID {
		t.Fatalf("sitter_id = %v, want %s", patch["sitter_id"], sitter.ID)
	}
	if patch["status"] != string(models.StatusAccepted) {
		t.Fatalf("status = %v", patch["status"])
	}
}

func TestInviteReservedForInvitedSitter(t *testing.T) {
	invited := "sitter-invited"
	s := session(models.StatusRequested)
	s.SearchScope = models.ScopeInvite
	s.SitterID = &invited

	other := Actor{ID: "sitter-other", Role: models.RoleSitter}
	if _, err := Transition(s, Request{Target: models.StatusAccepted, Now: now}, other); !errors.Is(err, ErrNotInvitedSitter) {
		t.Fatalf("want ErrNotInvitedSitter, got %v", err)
	}

	patch, err := Transition(s, Request{Target: models.StatusAccepted, Now: now}, Actor{ID: invited, Role: models.RoleSitter})
	if err != nil {
		t.Fatalf("invited sitter rejected: %v", err)
	}
	if _, reassigned := patch["sitter_id"]; reassigned {
		t.Fatal("pre-assigned sitter_id was overwritten")
	}
}

func TestCompleteStampsTimes(t *testing.T) {
	s := session(models.StatusActive)
	s.SitterID = &sitter.ID

	patch, err := Transition(s, Request{Target: models.StatusCompleted, Now: now}, sitter)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if patch["completed_at"] != now {
		t.Fatalf("completed_at = %v", patch["completed_at"])
	}
	if patch["end_time"] != now {
		t.Fatalf("end_time fallback = %v, want now", patch["end_time"])
	}

	explicit := now.Add(-30 * time.Minute)
	patch, err = Transition(s, Request{Target: models.StatusCompleted, EndTime: &explicit, Now: now}, sitter)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if patch["end_time"] != explicit.UTC() {
		t.Fatalf("end_time = %v, want %v", patch["end_time"], explicit)
	}
}

func TestCancelRecordsActorAndReason(t *testing.T) {
	reason := "sick child"
	patch, err := Transition(session(models.StatusAccepted), Request{Target: models.StatusCancelled, Reason: &reason, Now: now}, parent)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if patch["cancelled_at"] != now {
		t.Fatalf("cancelled_at = %v", patch["cancelled_at"])
	}
	if patch["cancelled_by"] != string(models.RoleParent) {
		t.Fatalf("cancelled_by = %v", patch["cancelled_by"])
	}
	if patch["cancellation_reason"] != reason {
		t.Fatalf("cancellation_reason = %v", patch["cancellation_reason"])
	}
}

func TestDeferredAssignmentOnStart(t *testing.T) {
	patch, err := Transition(session(models.StatusAccepted), Request{Target: models.StatusActive, Now: now}, sitter)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if patch["sitter_id"] != sitter.ID {
		t.Fatalf("unassigned session did not pick up the starting sitter")
	}
}
