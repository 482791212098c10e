package discovery

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/msafryx/carelum-backend/auth"
	"github.com/msafryx/carelum-backend/models"
	"github.com/msafryx/carelum-backend/store"
)

type fakeStore struct {
	store.Store
	rows []store.Row
	err  error
}

func (f *fakeStore) Select(ctx context.Context, table string, q store.Query) ([]store.Row, error) {
	return f.rows, f.err
}

var (
	caller  = auth.CurrentUser{ID: "sitter-1", Role: models.RoleSitter}
	baseNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
)

func ptr[T any](v T) *T { return &v }

func sessionRow(id string, scope models.SearchScope, start time.Time, mutate func(store.Row)) store.Row {
	row := store.Row{
		"id":           id,
		"parent_id":    "parent-1",
		"status":       "requested",
		"search_scope": string(scope),
		"start_time":   start,
		"created_at":   baseNow,
		"updated_at":   baseNow,
	}
	if mutate != nil {
		mutate(row)
	}
	return row
}

func newTestEngine(rows []store.Row) *Engine {
	e := NewEngine(&fakeStore{rows: rows})
	e.now = func() time.Time { return baseNow }
	return e
}

func TestOnlySittersMayBrowse(t *testing.T) {
	e := newTestEngine(nil)
	_, err := e.OpenRequests(context.Background(), auth.CurrentUser{ID: "p", Role: models.RoleParent}, Params{})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}

func TestNearbyWithoutPositionIsEmpty(t *testing.T) {
	rows := []store.Row{sessionRow("s1", models.ScopeNationwide, baseNow, nil)}
	e := newTestEngine(rows)

	out, err := e.OpenRequests(context.Background(), caller, Params{Scope: models.ScopeNearby})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("got %d sessions, want 0", len(out))
	}
}

func TestInvitesPinnedFirst(t *testing.T) {
	rows := []store.Row{
		sessionRow("open-early", models.ScopeNationwide, baseNow.Add(1*time.Hour), nil),
		sessionRow("invite-late", models.ScopeInvite, baseNow.Add(8*time.Hour), func(r store.Row) {
			r["sitter_id"] = caller.ID
		}),
		sessionRow("invite-other", models.ScopeInvite, baseNow.Add(1*time.Hour), func(r store.Row) {
			r["sitter_id"] = "someone-else"
		}),
	}
	e := newTestEngine(rows)

	out, err := e.OpenRequests(context.Background(), caller, Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d sessions, want 2", len(out))
	}
	if out[0].ID != "invite-late" {
		t.Fatalf("first = %s, want the invitation despite its later start", out[0].ID)
	}
	if out[1].ID != "open-early" {
		t.Fatalf("second = %s", out[1].ID)
	}
}

func TestExpiredRequestsSkipped(t *testing.T) {
	rows := []store.Row{
		sessionRow("expired", models.ScopeNationwide, baseNow.Add(time.Hour), func(r store.Row) {
			r["expires_at"] = baseNow.Add(-time.Minute)
		}),
		sessionRow("fresh", models.ScopeNationwide, baseNow.Add(time.Hour), func(r store.Row) {
			r["expires_at"] = baseNow.Add(time.Hour)
		}),
	}
	e := newTestEngine(rows)

	out, err := e.OpenRequests(context.Background(), caller, Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ID != "fresh" {
		t.Fatalf("got %v", ids(out))
	}
}

func TestNearbyDeclaredRadius(t *testing.T) {
	rows := []store.Row{
		sessionRow("wide", models.ScopeNearby, baseNow.Add(time.Hour), func(r store.Row) {
			r["max_distance_km"] = 25.0
		}),
		sessionRow("narrow", models.ScopeNearby, baseNow.Add(time.Hour), func(r store.Row) {
			r["max_distance_km"] = 5.0
		}),
		sessionRow("undeclared", models.ScopeNearby, baseNow.Add(time.Hour), nil),
	}
	e := newTestEngine(rows)

	out, err := e.OpenRequests(context.Background(), caller, Params{
		Scope:       models.ScopeNearby,
		MaxDistance: ptr(10.0),
		Latitude:    ptr(52.52),
		Longitude:   ptr(13.40),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ID != "wide" {
		t.Fatalf("got %v, want only the session whose declared radius covers the filter", ids(out))
	}
}

func TestCityMatchIsCaseInsensitive(t *testing.T) {
	rows := []store.Row{
		sessionRow("berlin", models.ScopeCity, baseNow.Add(time.Hour), func(r store.Row) {
			r["location"] = `{"city": "Berlin", "address": "Alexanderplatz 1"}`
		}),
		sessionRow("hamburg", models.ScopeCity, baseNow.Add(time.Hour), func(r store.Row) {
			r["location"] = `{"city": "Hamburg"}`
		}),
		sessionRow("freeform", models.ScopeCity, baseNow.Add(time.Hour), func(r store.Row) {
			r["location"] = "somewhere near the park"
		}),
	}
	e := newTestEngine(rows)

	out, err := e.OpenRequests(context.Background(), caller, Params{Scope: models.ScopeCity, City: "berlin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ID != "berlin" {
		t.Fatalf("got %v", ids(out))
	}
}

func TestScopeFilterNarrowsFeed(t *testing.T) {
	rows := []store.Row{
		sessionRow("nationwide", models.ScopeNationwide, baseNow.Add(time.Hour), nil),
		sessionRow("city", models.ScopeCity, baseNow.Add(time.Hour), func(r store.Row) {
			r["location"] = `{"city": "Berlin"}`
		}),
	}
	e := newTestEngine(rows)

	out, err := e.OpenRequests(context.Background(), caller, Params{Scope: models.ScopeNationwide})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ID != "nationwide" {
		t.Fatalf("got %v", ids(out))
	}
}

func TestCapAppliesAfterFiltering(t *testing.T) {
	var rows []store.Row
	for i := 0; i < DefaultLimit+20; i++ {
		rows = append(rows, sessionRow(fmt.Sprintf("open-%d", i), models.ScopeNationwide, baseNow.Add(time.Duration(i)*time.Minute), nil))
	}
	// The invitation sorts last in query order but must survive the cap.
	rows = append(rows, sessionRow("invite", models.ScopeInvite, baseNow.Add(240*time.Hour), func(r store.Row) {
		r["sitter_id"] = caller.ID
	}))
	e := newTestEngine(rows)

	out, err := e.OpenRequests(context.Background(), caller, Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != DefaultLimit {
		t.Fatalf("got %d sessions, want %d", len(out), DefaultLimit)
	}
	if out[0].ID != "invite" {
		t.Fatalf("invitation was crowded out: first = %s", out[0].ID)
	}
}

func ids(sessions []models.Session) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.ID
	}
	return out
}
