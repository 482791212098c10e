package models

import "time"

// SessionStatus is the session lifecycle state. Transitions between
// states go through the lifecycle package; nothing else writes status.
type SessionStatus string

const (
	StatusRequested SessionStatus = "requested"
	StatusAccepted  SessionStatus = "accepted"
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"

	// StatusPending is a legacy alias older clients still send. It is
	// normalized to StatusRequested on input and never stored.
	StatusPending SessionStatus = "pending"
)

// ParseStatus normalizes a raw status value, folding the legacy
// "pending" alias into StatusRequested. Unknown values return "".
func ParseStatus(raw string) SessionStatus {
	switch SessionStatus(raw) {
	case StatusRequested, StatusPending:
		return StatusRequested
	case StatusAccepted:
		return StatusAccepted
	case StatusActive:
		return StatusActive
	case StatusCompleted:
		return StatusCompleted
	case StatusCancelled:
		return StatusCancelled
	default:
		return ""
	}
}

// IsTerminal reports whether no further transitions are permitted.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// SearchScope is the visibility mode of an open session request.
type SearchScope string

const (
	ScopeInvite     SearchScope = "invite"
	ScopeNearby     SearchScope = "nearby"
	ScopeCity       SearchScope = "city"
	ScopeNationwide SearchScope = "nationwide"
)

func ParseScope(raw string) SearchScope {
	switch SearchScope(raw) {
	case ScopeInvite, ScopeNearby, ScopeCity, ScopeNationwide:
		return SearchScope(raw)
	default:
		return ""
	}
}

// NearbyRadiiKm are the only radii a nearby-scoped request may declare.
var NearbyRadiiKm = []float64{5, 10, 25}

func ValidNearbyRadius(km float64) bool {
	for _, r := range NearbyRadiiKm {
		if km == r {
			return true
		}
	}
	return false
}

// TimeSlot is one day of a multi-day booking.
type TimeSlot struct {
	Date  string  `json:"date"`
	Start string  `json:"start"`
	End   string  `json:"end"`
	Hours float64 `json:"hours"`
}

type Session struct {
	ID                 string        `json:"id"`
	ParentID           string        `json:"parentId"`
	SitterID           *string       `json:"sitterId"`
	ChildID            string        `json:"childId"`
	ChildIDs           []string      `json:"childIds,omitempty"`
	Status             SessionStatus `json:"status"`
	SearchScope        SearchScope   `json:"searchScope"`
	MaxDistanceKm      *float64      `json:"maxDistanceKm"`
	StartTime          time.Time     `json:"startTime"`
	EndTime            *time.Time    `json:"endTime"`
	ExpiresAt          *time.Time    `json:"expiresAt"`
	TimeSlots          []TimeSlot    `json:"timeSlots,omitempty"`
	Location           *string       `json:"location"`
	HourlyRate         *float64      `json:"hourlyRate"`
	TotalAmount        *float64      `json:"totalAmount"`
	Notes              *string       `json:"notes"`
	CancelledAt        *time.Time    `json:"cancelledAt"`
	CancelledBy        *string       `json:"cancelledBy"`
	CancellationReason *string       `json:"cancellationReason"`
	CompletedAt        *time.Time    `json:"completedAt"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// SessionFromRow maps a sessions table row onto the wire model.
func SessionFromRow(row map[string]any) Session {
	s := Session{
		ID:                 rowString(row, "id"),
		ParentID:           rowString(row, "parent_id"),
		SitterID:           rowStringPtr(row, "sitter_id"),
		ChildID:            rowString(row, "child_id"),
		Status:             ParseStatus(rowString(row, "status")),
		SearchScope:        ParseScope(rowString(row, "search_scope")),
		MaxDistanceKm:      rowFloatPtr(row, "max_distance_km"),
		StartTime:          rowTime(row, "start_time"),
		EndTime:            rowTimePtr(row, "end_time"),
		ExpiresAt:          rowTimePtr(row, "expires_at"),
		Location:           rowStringPtr(row, "location"),
		HourlyRate:         rowFloatPtr(row, "hourly_rate"),
		TotalAmount:        rowFloatPtr(row, "total_amount"),
		Notes:              rowStringPtr(row, "notes"),
		CancelledAt:        rowTimePtr(row, "cancelled_at"),
		CancelledBy:        rowStringPtr(row, "cancelled_by"),
		CancellationReason: rowStringPtr(row, "cancellation_reason"),
		CompletedAt:        rowTimePtr(row, "completed_at"),
		CreatedAt:          rowTime(row, "created_at"),
		UpdatedAt:          rowTime(row, "updated_at"),
	}
	rowJSON(row, "child_ids", &s.ChildIDs)
	rowJSON(row, "time_slots", &s.TimeSlots)
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	return s
}
