package models

import (
	"testing"
	"time"
)

func TestSessionFromRow(t *testing.T) {
	start := time.Date(2026, 3, 12, 18, 0, 0, 0, time.UTC)
	row := map[string]any{
		"id":              "s1",
		"parent_id":       "p1",
		"sitter_id":       "b1",
		"status":          "pending",
		"search_scope":    "nearby",
		"max_distance_km": 10.0,
		"start_time":      start,
		"expires_at":      "2026-03-12T17:00:00Z",
		"child_ids":       `["c1", "c2"]`,
		"time_slots":      `[{"date": "2026-03-12", "start": "18:00", "end": "21:00", "hours": 3}]`,
		"location":        `{"city": "Berlin"}`,
		"created_at":      start.Add(-24 * time.Hour),
	}

	s := SessionFromRow(row)
	if s.Status != StatusRequested {
		t.Fatalf("stored pending alias not normalized: %s", s.Status)
	}
	if s.SitterID == nil || *s.SitterID != "b1" {
		t.Fatalf("sitter_id = %v", s.SitterID)
	}
	if s.MaxDistanceKm == nil || *s.MaxDistanceKm != 10 {
		t.Fatalf("max_distance_km = %v", s.MaxDistanceKm)
	}
	if !s.StartTime.Equal(start) {
		t.Fatalf("start_time = %v", s.StartTime)
	}
	if s.ExpiresAt == nil || !s.ExpiresAt.Equal(start.Add(-time.Hour)) {
		t.Fatalf("expires_at = %v, RFC3339 string not decoded", s.ExpiresAt)
	}
	if len(s.ChildIDs) != 2 || s.ChildIDs[1] != "c2" {
		t.Fatalf("child_ids = %v", s.ChildIDs)
	}
	if len(s.TimeSlots) != 1 || s.TimeSlots[0].Hours != 3 {
		t.Fatalf("time_slots = %v", s.TimeSlots)
	}
	if !s.UpdatedAt.Equal(s.CreatedAt) {
		t.Fatalf("updated_at fallback = %v", s.UpdatedAt)
	}
}

func TestUserFromRowDefaults(t *testing.T) {
	u := UserFromRow(map[string]any{
		"id":    "u1",
		"email": "u1@example.com",
		"role":  "babysitter",
	})
	if u.Role != RoleSitter {
		t.Fatalf("role = %s, legacy spelling not folded", u.Role)
	}
	if u.PreferredLanguage != "en" || u.Theme != "auto" {
		t.Fatalf("defaults = %s/%s", u.PreferredLanguage, u.Theme)
	}

	u = UserFromRow(map[string]any{"id": "u2", "role": "bogus"})
	if u.Role != RoleParent {
		t.Fatalf("unknown stored role = %s, want parent fallback", u.Role)
	}
}
