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

type CreateAlertInput struct {
	SessionID string  `json:"sessionId" binding:"required,uuid"`
	Type      string  `json:"type" binding:"required"`
	Message   *string `json:"message"`
	Severity  *string `json:"severity"`
}

var alertSeverities = map[string]bool{"info": true, "warning": true, "critical": true}

// CreateAlert raises an alert on a session the caller participates in.
func (ct *Controller) CreateAlert(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	var input CreateAlertInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	severity := "info"
	if input.Severity != nil {
		if !alertSeverities[*input.Severity] {
			security.SendValidationError(c, "Severity must be info, warning or critical", *input.Severity)
			return
		}
		severity = *input.Severity
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
	if !policy.CanAccessSession(session, user) {
		security.SendForbiddenError(c, "You are not a participant of this session")
		return
	}

	row := store.Row{
		"id":         uuid.NewString(),
		"session_id": session.ID,
		"parent_id":  session.ParentID,
		"type":       input.Type,
		"severity":   severity,
		"created_at": time.Now().UTC(),
	}
	if session.SitterID != nil {
		row["sitter_id"] = *session.SitterID
	}
	if input.Message != nil {
		row["message"] = *input.Message
	}

	created, err := ct.scoped(c).Insert(c.Request.Context(), "alerts", row)
	if err != nil {
		ct.Log.Error("create alert", zap.Error(err), zap.String("session_id", session.ID))
		security.SendStoreError(c, err, "Failed to create alert")
		return
	}
	c.JSON(http.StatusCreated, models.AlertFromRow(created))
}

// ListSessionAlerts returns the alerts of one session, newest first.
func (ct *Controller) ListSessionAlerts(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	session, found, err := ct.loadSessionByID(c, c.Param("id"))
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

	rows, err := ct.scoped(c).Select(c.Request.Context(), "alerts", store.Query{
		Filters: []store.Filter{store.Eq("session_id", session.ID)},
		OrderBy: "created_at",
		Desc:    true,
	})
	if err != nil {
		ct.Log.Error("list alerts", zap.Error(err), zap.String("session_id", session.ID))
		security.SendStoreError(c, err, "Failed to load alerts")
		return
	}

	out := make([]models.Alert, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.AlertFromRow(row))
	}
	c.JSON(http.StatusOK, out)
}

// AcknowledgeAlert stamps the alert as seen by a participant.
func (ct *Controller) AcknowledgeAlert(c *gin.Context) {
	ct.stampAlert(c, "acknowledged_at")
}

// ResolveAlert stamps the alert as handled.
func (ct *Controller) ResolveAlert(c *gin.Context) {
	ct.stampAlert(c, "resolved_at")
}

func (ct *Controller) stampAlert(c *gin.Context, column string) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	id := c.Param("id")
	rows, err := ct.scoped(c).Select(c.Request.Context(), "alerts", store.Query{
		Filters: []store.Filter{store.Eq("id", id)},
		Limit:   1,
	})
	if err != nil {
		security.SendStoreError(c, err, "Failed to load alert")
		return
	}
	if len(rows) == 0 {
		security.SendNotFoundError(c, "alert")
		return
	}
	alert := models.AlertFromRow(rows[0])
	if !policy.CanAccessRecord(alert.ParentID, alert.SitterID, user) {
		security.SendForbiddenError(c, "You are not a participant of this session")
		return
	}

	updated, err := ct.scoped(c).Update(c.Request.Context(), "alerts",
		[]store.Filter{store.Eq("id", id)},
		store.Row{column: time.Now().UTC()})
	if err != nil {
		ct.Log.Error("stamp alert", zap.Error(err), zap.String("alert_id", id))
		security.SendStoreError(c, err, "Failed to update alert")
		return
	}
	if len(updated) == 0 {
		security.SendNotFoundError(c, "alert")
		return
	}
	c.JSON(http.StatusOK, models.AlertFromRow(updated[0]))
}

func (ct *Controller) loadSessionByID(c *gin.Context, id string) (models.Session, bool, error) {
	rows, err := ct.scoped(c).Select(c.Request.Context(), "sessions", store.Query{
		Filters: []store.Filter{store.Eq("id", id)},
		Limit:   1,
	})
	if err != nil {
		ct.Log.Error("load session", zap.Error(err), zap.String("session_id", id))
		return models.Session{}, false, err
	}
	if len(rows) == 0 {
		return models.Session{}, false, nil
	}
	return models.SessionFromRow(rows[0]), true, nil
}
