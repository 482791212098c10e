package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/msafryx/carelum-backend/auth"
	"github.com/msafryx/carelum-backend/discovery"
	"github.com/msafryx/carelum-backend/lifecycle"
	"github.com/msafryx/carelum-backend/metrics"
	"github.com/msafryx/carelum-backend/models"
	"github.com/msafryx/carelum-backend/policy"
	"github.com/msafryx/carelum-backend/security"
	"github.com/msafryx/carelum-backend/store"
)

type CreateSessionInput struct {
	ParentID      string            `json:"parentId"`
	SitterID      *string           `json:"sitterId"`
	ChildID       string            `json:"childId"`
	ChildIDs      []string          `json:"childIds"`
	SearchScope   string            `json:"searchScope" binding:"required"`
	MaxDistanceKm *float64          `json:"maxDistanceKm"`
	StartTime     time.Time         `json:"startTime" binding:"required"`
	EndTime       *time.Time        `json:"endTime"`
	ExpiresAt     *time.Time        `json:"expiresAt"`
	TimeSlots     []models.TimeSlot `json:"timeSlots"`
	Location      *string           `json:"location"`
	HourlyRate    *float64          `json:"hourlyRate"`
	TotalAmount   *float64          `json:"totalAmount"`
	Notes         *string           `json:"notes"`
}

type UpdateSessionInput struct {
	Status        *string           `json:"status"`
	Reason        *string           `json:"reason"`
	StartTime     *time.Time        `json:"startTime"`
	EndTime       *time.Time        `json:"endTime"`
	ExpiresAt     *time.Time        `json:"expiresAt"`
	TimeSlots     []models.TimeSlot `json:"timeSlots"`
	Location      *string           `json:"location"`
	HourlyRate    *float64          `json:"hourlyRate"`
	TotalAmount   *float64          `json:"totalAmount"`
	Notes         *string           `json:"notes"`
	MaxDistanceKm *float64          `json:"maxDistanceKm"`
}

// CreateSession opens a new session request owned by the calling parent.
func (ct *Controller) CreateSession(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	var input CreateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	if input.ParentID != "" && input.ParentID != user.ID && user.Role != models.RoleAdmin {
		security.SendForbiddenError(c, "A session request can only be created for yourself")
		return
	}
	parentID := user.ID
	if user.Role == models.RoleAdmin && input.ParentID != "" {
		parentID = input.ParentID
	}

	if input.ChildID == "" && len(input.ChildIDs) == 0 {
		security.SendValidationError(c, "A session request must include at least one child", nil)
		return
	}
	if len(input.ChildIDs) == 0 {
		input.ChildIDs = []string{input.ChildID}
	}

	scope := models.ParseScope(input.SearchScope)
	if scope == "" {
		security.SendValidationError(c, "Unknown search scope", input.SearchScope)
		return
	}
	switch scope {
	case models.ScopeInvite:
		if input.SitterID == nil || *input.SitterID == "" {
			security.SendValidationError(c, "An invite-scoped request must name the invited sitter", nil)
			return
		}
	case models.ScopeNearby:
		if input.MaxDistanceKm == nil || !models.ValidNearbyRadius(*input.MaxDistanceKm) {
			security.SendValidationError(c, "A nearby-scoped request must declare a radius of 5, 10 or 25 km", input.MaxDistanceKm)
			return
		}
		fallthrough
	default:
		if input.SitterID != nil {
			security.SendValidationError(c, "Only invite-scoped requests may name a sitter", nil)
			return
		}
	}

	now := time.Now().UTC()
	row := store.Row{
		"id":           uuid.NewString(),
		"parent_id":    parentID,
		"child_ids":    mustJSON(input.ChildIDs),
		"status":       string(models.StatusRequested),
		"search_scope": string(scope),
		"start_time":   input.StartTime.UTC(),
		"time_slots":   mustJSON(input.TimeSlots),
		"created_at":   now,
		"updated_at":   now,
	}
	if input.ChildID != "" {
		row["child_id"] = input.ChildID
	}
	if input.SitterID != nil {
		row["sitter_id"] = *input.SitterID
	}
	if input.MaxDistanceKm != nil {
		row["max_distance_km"] = *input.MaxDistanceKm
	}
	if input.EndTime != nil {
		row["end_time"] = input.EndTime.UTC()
	}
	if input.ExpiresAt != nil {
		row["expires_at"] = input.ExpiresAt.UTC()
	}
	if input.Location != nil {
		row["location"] = *input.Location
	}
	if input.HourlyRate != nil {
		row["hourly_rate"] = *input.HourlyRate
	}
	if input.TotalAmount != nil {
		row["total_amount"] = *input.TotalAmount
	}
	if input.Notes != nil {
		row["notes"] = *input.Notes
	}

	created, err := ct.scoped(c).Insert(c.Request.Context(), "sessions", row)
	if err != nil {
		ct.Log.Error("create session", zap.Error(err))
		security.SendStoreError(c, err, "Failed to create session request")
		return
	}
	c.JSON(http.StatusCreated, models.SessionFromRow(created))
}

// ListMySessions returns the caller's sessions, newest first. Parents
// see sessions they opened, sitters see sessions assigned to them,
// admins see everything.
func (ct *Controller) ListMySessions(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	q := store.Query{OrderBy: "start_time", Desc: true}
	switch user.Role {
	case models.RoleSitter:
		q.Filters = append(q.Filters, store.Eq("sitter_id", user.ID))
	case models.RoleAdmin:
	default:
		q.Filters = append(q.Filters, store.Eq("parent_id", user.ID))
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ParseStatus(raw)
		if status == "" {
			security.SendValidationError(c, "Unknown session status", raw)
			return
		}
		q.Filters = append(q.Filters, statusFilter(status))
	}

	rows, err := ct.scoped(c).Select(c.Request.Context(), "sessions", q)
	if err != nil {
		ct.Log.Error("list sessions", zap.Error(err))
		security.SendStoreError(c, err, "Failed to load sessions")
		return
	}

	out := make([]models.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.SessionFromRow(row))
	}
	c.JSON(http.StatusOK, out)
}

// OpenRequests returns the discovery feed for the calling sitter.
func (ct *Controller) OpenRequests(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	params := discovery.Params{
		Scope: models.ParseScope(c.Query("scope")),
		City:  c.Query("city"),
	}
	if raw := c.Query("maxDistanceKm"); raw != "" {
		km, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			security.SendValidationError(c, "maxDistanceKm must be a number", raw)
			return
		}
		params.MaxDistance = &km
	}
	params.Latitude = queryFloat(c, "latitude")
	params.Longitude = queryFloat(c, "longitude")

	// Fall back to the sitter's stored position when the client did not
	// send one.
	if params.Latitude == nil || params.Longitude == nil {
		rows, err := ct.scoped(c).Select(c.Request.Context(), "users", store.Query{
			Filters: []store.Filter{store.Eq("id", user.ID)},
			Limit:   1,
		})
		if err == nil && len(rows) == 1 {
			profile := models.UserFromRow(rows[0])
			params.Latitude = profile.Latitude
			params.Longitude = profile.Longitude
		}
	}

	sessions, err := ct.Discovery.OpenRequests(c.Request.Context(), user, params)
	if err != nil {
		if errors.Is(err, discovery.ErrForbidden) {
			security.SendForbiddenError(c, "Only sitters can browse open session requests")
			return
		}
		ct.Log.Error("open requests", zap.Error(err))
		security.SendStoreError(c, err, "Failed to load open session requests")
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSession returns one session visible to the caller.
func (ct *Controller) GetSession(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	session, _, found, err := ct.loadSession(c)
	if err != nil {
		security.SendStoreError(c, err, "Failed to load session")
		return
	}
	if !found {
		security.SendNotFoundError(c, "session")
		return
	}
	if !policy.CanAccessSession(session, user) {
		security.SendForbiddenError(c, "You are not a participant of this session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateSession applies a status transition or a detail patch.
func (ct *Controller) UpdateSession(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	var input UpdateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	session, rawStatus, found, err := ct.loadSession(c)
	if err != nil {
		security.SendStoreError(c, err, "Failed to load session")
		return
	}
	if !found {
		security.SendNotFoundError(c, "session")
		return
	}

	if input.Status != nil {
		ct.transition(c, session, rawStatus, *input.Status, input.Reason, input.EndTime, user)
		return
	}

	if user.Role != models.RoleAdmin && user.ID != session.ParentID {
		security.SendForbiddenError(c, "Only the requesting parent can edit session details")
		return
	}
	if session.Status.IsTerminal() {
		security.SendError(c, http.StatusConflict, security.CodeConflict, "Session closed",
			"A completed or cancelled session can no longer be edited", nil)
		return
	}

	patch := store.Row{"updated_at": time.Now().UTC()}
	if input.StartTime != nil {
		patch["start_time"] = input.StartTime.UTC()
	}
	if input.EndTime != nil {
		patch["end_time"] = input.EndTime.UTC()
	}
	if input.ExpiresAt != nil {
		patch["expires_at"] = input.ExpiresAt.UTC()
	}
	if input.TimeSlots != nil {
		patch["time_slots"] = mustJSON(input.TimeSlots)
	}
	if input.Location != nil {
		patch["location"] = *input.Location
	}
	if input.HourlyRate != nil {
		patch["hourly_rate"] = *input.HourlyRate
	}
	if input.TotalAmount != nil {
		patch["total_amount"] = *input.TotalAmount
	}
	if input.Notes != nil {
		patch["notes"] = *input.Notes
	}
	if input.MaxDistanceKm != nil {
		if session.SearchScope == models.ScopeNearby && !models.ValidNearbyRadius(*input.MaxDistanceKm) {
			security.SendValidationError(c, "A nearby-scoped request must declare a radius of 5, 10 or 25 km", *input.MaxDistanceKm)
			return
		}
		patch["max_distance_km"] = *input.MaxDistanceKm
	}

	rows, err := ct.scoped(c).Update(c.Request.Context(), "sessions",
		[]store.Filter{store.Eq("id", session.ID)}, patch)
	if err != nil {
		ct.Log.Error("update session", zap.Error(err), zap.String("session_id", session.ID))
		security.SendStoreError(c, err, "Failed to update session")
		return
	}
	if len(rows) == 0 {
		security.SendNotFoundError(c, "session")
		return
	}
	c.JSON(http.StatusOK, models.SessionFromRow(rows[0]))
}

// CancelSession cancels the session on behalf of the caller.
func (ct *Controller) CancelSession(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	session, rawStatus, found, err := ct.loadSession(c)
	if err != nil {
		security.SendStoreError(c, err, "Failed to load session")
		return
	}
	if !found {
		security.SendNotFoundError(c, "session")
		return
	}

	var reason *string
	if r := c.Query("reason"); r != "" {
		reason = &r
	}
	ct.transition(c, session, rawStatus, string(models.StatusCancelled), reason, nil, user)
}

// transition validates and applies one status change. The update is
// conditional on the status read during authorization; losing that race
// surfaces as a conflict instead of a silent double transition.
func (ct *Controller) transition(c *gin.Context, session models.Session, rawStatus, target string, reason *string, endTime *time.Time, user auth.CurrentUser) {
	to := models.ParseStatus(target)
	if to == "" {
		security.SendValidationError(c, "Unknown session status", target)
		return
	}

	switch to {
	case models.StatusActive, models.StatusCompleted:
		if user.Role != models.RoleAdmin && (session.SitterID == nil || *session.SitterID != user.ID) {
			// Deferred assignment: an unassigned accepted session can
			// still be started by the sitter who shows up.
			if !(to == models.StatusActive && session.SitterID == nil) {
				security.SendForbiddenError(c, "Only the assigned sitter can update this session")
				return
			}
		}
	case models.StatusCancelled:
		if !policy.CanAccessSession(session, user) {
			security.SendForbiddenError(c, "You are not a participant of this session")
			return
		}
	}

	patch, err := lifecycle.Transition(session, lifecycle.Request{
		Target:  to,
		EndTime: endTime,
		Reason:  reason,
		Now:     time.Now().UTC(),
	}, lifecycle.Actor{ID: user.ID, Role: user.Role})
	if err != nil {
		var terr *lifecycle.TransitionError
		switch {
		case errors.Is(err, lifecycle.ErrNotInvitedSitter):
			security.SendForbiddenError(c, "This session request is reserved for the invited sitter")
		case errors.As(err, &terr):
			security.SendError(c, http.StatusConflict, security.CodeInvalidTransition, "Invalid transition",
				terr.Error(), gin.H{"from": terr.From, "to": terr.To})
		default:
			security.SendStoreError(c, err, "Failed to update session status")
		}
		return
	}

	rows, err := ct.scoped(c).Update(c.Request.Context(), "sessions",
		[]store.Filter{store.Eq("id", session.ID), store.Eq("status", rawStatus)}, store.Row(patch))
	if err != nil {
		ct.Log.Error("apply transition", zap.Error(err), zap.String("session_id", session.ID))
		security.SendStoreError(c, err, "Failed to update session status")
		return
	}
	if len(rows) == 0 {
		security.SendError(c, http.StatusConflict, security.CodeConflict, "Session changed",
			"The session status changed while your request was in flight. Reload and retry", nil)
		return
	}

	metrics.SessionTransitions.WithLabelValues(string(to)).Inc()
	ct.Log.Info("session transition",
		zap.String("session_id", session.ID),
		zap.String("from", string(session.Status)),
		zap.String("to", string(to)),
		zap.String("actor", user.ID))
	c.JSON(http.StatusOK, models.SessionFromRow(rows[0]))
}

// loadSession fetches the session named by the :id route param along
// with the raw stored status value used for conditional writes.
func (ct *Controller) loadSession(c *gin.Context) (models.Session, string, bool, error) {
	id := c.Param("id")
	rows, err := ct.scoped(c).Select(c.Request.Context(), "sessions", store.Query{
		Filters: []store.Filter{store.Eq("id", id)},
		Limit:   1,
	})
	if err != nil {
		ct.Log.Error("load session", zap.Error(err), zap.String("session_id", id))
		return models.Session{}, "", false, err
	}
	if len(rows) == 0 {
		return models.Session{}, "", false, nil
	}
	raw, _ := rows[0]["status"].(string)
	return models.SessionFromRow(rows[0]), raw, true, nil
}

// statusFilter matches a normalized status against stored rows, folding
// the legacy "pending" spelling into requested.
func statusFilter(status models.SessionStatus) store.Filter {
	if status == models.StatusRequested {
		return store.In("status", string(models.StatusRequested), string(models.StatusPending))
	}
	return store.Eq("status", string(status))
}

func queryFloat(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// mustJSON renders v for a jsonb column. Nil slices become empty JSON
// arrays so the column default semantics hold.
func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return "[]"
	}
	return string(b)
}
