package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/msafryx/carelum-backend/models"
	"github.com/msafryx/carelum-backend/policy"
	"github.com/msafryx/carelum-backend/security"
	"github.com/msafryx/carelum-backend/store"
)

type TrackLocationInput struct {
	SessionID string   `json:"sessionId" binding:"required,uuid"`
	Latitude  float64  `json:"latitude" binding:"required"`
	Longitude float64  `json:"longitude" binding:"required"`
	Accuracy  *float64 `json:"accuracy"`
	Speed     *float64 `json:"speed"`
	Heading   *float64 `json:"heading"`
}

// TrackLocation records a GPS ping from the assigned sitter of an
// active session.
func (ct *Controller) TrackLocation(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	var input TrackLocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}
	if input.Latitude < -90 || input.Latitude > 90 || input.Longitude < -180 || input.Longitude > 180 {
		security.SendValidationError(c, "Coordinates out of range", input)
		return
	}

	session, found, err := ct.loadSessionByID(c, input.SessionID)
	if err != nil {
		security.SendStoreError(c, err, "Failed to load session")
		return
	}
	if !found {
		security.SendNotFoundError(c, "session")
		return
	}
	if session.SitterID == nil || *session.SitterID != user.ID {
		security.SendForbiddenError(c, "Only the assigned sitter can report a location")
		return
	}
	if session.Status != models.StatusActive {
		security.SendError(c, http.StatusConflict, security.CodeConflict, "Session not active",
			"Location tracking is only recorded while the session is active", nil)
		return
	}

	row := store.Row{
		"id":         uuid.NewString(),
		"session_id": session.ID,
		"sitter_id":  user.ID,
		"latitude":   input.Latitude,
		"longitude":  input.Longitude,
		"created_at": time.Now().UTC(),
	}
	if input.Accuracy != nil {
		row["accuracy"] = *input.Accuracy
	}
	if input.Speed != nil {
		row["speed"] = *input.Speed
	}
	if input.Heading != nil {
		row["heading"] = *input.Heading
	}

	created, err := ct.scoped(c).Insert(c.Request.Context(), "gps_locations", row)
	if err != nil {
		ct.Log.Error("track location", zap.Error(err), zap.String("session_id", session.ID))
		security.SendStoreError(c, err, "Failed to record location")
		return
	}
	c.JSON(http.StatusCreated, models.GPSLocationFromRow(created))
}

// SessionLocationHistory returns the recorded track of one session in
// chronological order.
func (ct *Controller) SessionLocationHistory(c *gin.Context) {
	session, ok := ct.authorizeSessionRecord(c)
	if !ok {
		return
	}

	rows, err := ct.scoped(c).Select(c.Request.Context(), "gps_locations", store.Query{
		Filters: []store.Filter{store.Eq("session_id", session.ID)},
		OrderBy: "created_at",
	})
	if err != nil {
		ct.Log.Error("location history", zap.Error(err), zap.String("session_id", session.ID))
		security.SendStoreError(c, err, "Failed to load location history")
		return
	}

	out := make([]models.GPSLocation, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.GPSLocationFromRow(row))
	}
	c.JSON(http.StatusOK, out)
}

// SessionLatestLocation returns the most recent ping of one session.
func (ct *Controller) SessionLatestLocation(c *gin.Context) {
	session, ok := ct.authorizeSessionRecord(c)
	if !ok {
		return
	}

	rows, err := ct.scoped(c).Select(c.Request.Context(), "gps_locations", store.Query{
		Filters: []store.Filter{store.Eq("session_id", session.ID)},
		OrderBy: "created_at",
		Desc:    true,
		Limit:   1,
	})
	if err != nil {
		ct.Log.Error("latest location", zap.Error(err), zap.String("session_id", session.ID))
		security.SendStoreError(c, err, "Failed to load location")
		return
	}
	if len(rows) == 0 {
		security.SendNotFoundError(c, "location")
		return
	}
	c.JSON(http.StatusOK, models.GPSLocationFromRow(rows[0]))
}

// authorizeSessionRecord loads the :id session and verifies the caller
// participates in it.
func (ct *Controller) authorizeSessionRecord(c *gin.Context) (models.Session, bool) {
	user, ok := ct.currentUser(c)
	if !ok {
		return models.Session{}, false
	}

	session, found, err := ct.loadSessionByID(c, c.Param("id"))
	if err != nil {
		security.SendStoreError(c, err, "Failed to load session")
		return models.Session{}, false
	}
	if !found {
		security.SendNotFoundError(c, "session")
		return models.Session{}, false
	}
	if !policy.CanAccessSession(session, user) {
		security.SendForbiddenError(c, "You are not a participant of this session")
		return models.Session{}, false
	}
	return session, true
}
