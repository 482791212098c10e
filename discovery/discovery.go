// Package discovery resolves which open session requests a sitter may
// see and in what order: invitations pinned first, then everything else
// by ascending start time.
package discovery

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/msafryx/carelum-backend/auth"
	"github.com/msafryx/carelum-backend/models"
	"github.com/msafryx/carelum-backend/store"
)

// ErrForbidden rejects non-sitter callers.
var ErrForbidden = errors.New("only sitters can browse session requests")

// DefaultLimit caps the result size. The cap applies after filtering so
// a page of unrelated matches can never crowd out an invitation.
const DefaultLimit = 100

type Engine struct {
	store store.Store
	limit int
	now   func() time.Time
}

func NewEngine(st store.Store) *Engine {
	return &Engine{store: st, limit: DefaultLimit, now: func() time.Time { return time.Now().UTC() }}
}

// Params narrows the feed. Scope restricts non-invite candidates to one
// visibility mode; invitations are always considered.
type Params struct {
	Scope       models.SearchScope
	MaxDistance *float64
	City        string
	Latitude    *float64
	Longitude   *float64
}

// OpenRequests returns the ordered set of open requests visible to the
// calling sitter.
func (e *Engine) OpenRequests(ctx context.Context, sitter auth.CurrentUser, p Params) ([]models.Session, error) {
	if sitter.Role != models.RoleSitter {
		return nil, ErrForbidden
	}

	// A nearby feed without the caller's own position is empty, never
	// silently broadened to another scope.
	if p.Scope == models.ScopeNearby && (p.Latitude == nil || p.Longitude == nil) {
		return []models.Session{}, nil
	}

	rows, err := e.store.Select(ctx, "sessions", store.Query{
		Filters: []store.Filter{
			store.In("status", string(models.StatusRequested), string(models.StatusPending)),
		},
		OrderBy: "start_time",
	})
	if err != nil {
		return nil, err
	}

	now := e.now()
	var invites, others []models.Session
	for _, row := range rows {
		s := models.SessionFromRow(row)
		if s.ExpiresAt != nil && s.ExpiresAt.Before(now) {
			continue
		}
		if s.SearchScope == models.ScopeInvite {
			if s.SitterID != nil && *s.SitterID == sitter.ID {
				invites = append(invites, s)
			}
			continue
		}
		if p.Scope != "" && s.SearchScope != p.Scope {
			continue
		}
		if e.visible(s, p) {
			others = append(others, s)
		}
	}

	sort.SliceStable(others, func(i, j int) bool {
		return others[i].StartTime.Before(others[j].StartTime)
	})

	out := append(invites, others...)
	if len(out) > e.limit {
		out = out[:e.limit]
	}
	return out, nil
}

// visible applies the per-scope rule for non-invite candidates.
func (e *Engine) visible(s models.Session, p Params) bool {
	switch s.SearchScope {
	case models.ScopeNearby:
		if p.Latitude == nil || p.Longitude == nil {
			return false
		}
		// The declared-radius comparison below is intentional: the
		// session's advertised radius is tested against the sitter's
		// requested one. The live point-to-point haversine check
		// belongs to the verified-sitters listing, not this feed.
		if p.MaxDistance != nil {
			return s.MaxDistanceKm != nil && *s.MaxDistanceKm >= *p.MaxDistance
		}
		return true
	case models.ScopeCity:
		if s.Location == nil {
			return false
		}
		return models.ParseLocation(*s.Location).CityEquals(p.City)
	case models.ScopeNationwide:
		return true
	default:
		return false
	}
}
