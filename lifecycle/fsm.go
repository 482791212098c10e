// Package lifecycle is the single authoritative decision point for
// session status transitions. Every status write goes through
// Transition; no caller infers the rules ad hoc.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/msafryx/carelum-backend/models"
)

// ErrNotInvitedSitter rejects a sitter accepting an invite-scoped
// request that was pre-assigned to someone else.
var ErrNotInvitedSitter = errors.New("session is reserved for the invited sitter")

// TransitionError is a state-machine rejection carrying the current and
// requested status and a human-readable reason.
type TransitionError struct {
	From   models.SessionStatus
	To     models.SessionStatus
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s: %s", e.From, e.To, e.Reason)
}

// successors is the full transition table. Terminal states have no
// entry.
var successors = map[models.SessionStatus][]models.SessionStatus{
	models.StatusRequested: {models.StatusAccepted, models.StatusCancelled},
	models.StatusAccepted:  {models.StatusActive, models.StatusCancelled},
	models.StatusActive:    {models.StatusCompleted, models.StatusCancelled},
}

// Actor is the identity requesting a transition.
type Actor struct {
	ID   string
	Role models.Role
}

// Request carries the target status and the caller-supplied fields that
// feed transition side effects.
type Request struct {
	Target  models.SessionStatus
	EndTime *time.Time
	Reason  *string
	Now     time.Time
}

// Transition validates the requested status change and returns the
// column patch to apply atomically with the status write. The session
// itself is not mutated.
func Transition(s models.Session, req Request, actor Actor) (map[string]any, error) {
	from := s.Status
	to := req.Target
	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if from.IsTerminal() {
		return nil, &TransitionError{From: from, To: to, Reason: "session is in a terminal state"}
	}
	if !allowed(from, to) {
		return nil, &TransitionError{From: from, To: to, Reason: "not a permitted successor status"}
	}

	patch := map[string]any{
		"status":     string(to),
		"updated_at": now,
	}

	switch to {
	case models.StatusAccepted:
		if actor.Role != models.RoleSitter {
			return nil, &TransitionError{From: from, To: to, Reason: "only a sitter can accept a session"}
		}
		if s.SearchScope == models.ScopeInvite && s.SitterID != nil && *s.SitterID != actor.ID {
			return nil, ErrNotInvitedSitter
		}
		if s.SitterID == nil {
			patch["sitter_id"] = actor.ID
		}

	case models.StatusActive:
		if actor.Role != models.RoleSitter {
			return nil, &TransitionError{From: from, To: to, Reason: "only a sitter can start a session"}
		}
		// Covers a deferred assignment on the accepted -> active path.
		if s.SitterID == nil {
			patch["sitter_id"] = actor.ID
		}

	case models.StatusCompleted:
		if actor.Role != models.RoleSitter {
			return nil, &TransitionError{From: from, To: to, Reason: "only a sitter can complete a session"}
		}
		patch["completed_at"] = now
		if req.EndTime != nil {
			patch["end_time"] = req.EndTime.UTC()
		} else if s.EndTime == nil {
			patch["end_time"] = now
		}

	case models.StatusCancelled:
		patch["cancelled_at"] = now
		patch["cancelled_by"] = string(actor.Role)
		if req.Reason != nil && *req.Reason != "" {
			patch["cancellation_reason"] = *req.Reason
		}

	default:
		return nil, &TransitionError{From: from, To: to, Reason: "unknown target status"}
	}

	return patch, nil
}

func allowed(from, to models.SessionStatus) bool {
	for _, next := range successors[from] {
		if next == to {
			return true
		}
	}
	return false
}
