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

type SendMessageInput struct {
	SessionID string `json:"sessionId" binding:"required,uuid"`
	Content   string `json:"content" binding:"required"`
}

// SendMessage posts a chat message into a session the caller
// participates in.
func (ct *Controller) SendMessage(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
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
	if !policy.CanAccessSession(session, user) {
		security.SendForbiddenError(c, "You are not a participant of this session")
		return
	}

	created, err := ct.scoped(c).Insert(c.Request.Context(), "messages", store.Row{
		"id":         uuid.NewString(),
		"session_id": session.ID,
		"sender_id":  user.ID,
		"content":    input.Content,
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		ct.Log.Error("send message", zap.Error(err), zap.String("session_id", session.ID))
		security.SendStoreError(c, err, "Failed to send message")
		return
	}
	c.JSON(http.StatusCreated, models.MessageFromRow(created))
}

// ListSessionMessages returns the chat history of one session in send
// order.
func (ct *Controller) ListSessionMessages(c *gin.Context) {
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

	rows, err := ct.scoped(c).Select(c.Request.Context(), "messages", store.Query{
		Filters: []store.Filter{store.Eq("session_id", session.ID)},
		OrderBy: "created_at",
	})
	if err != nil {
		ct.Log.Error("list messages", zap.Error(err), zap.String("session_id", session.ID))
		security.SendStoreError(c, err, "Failed to load messages")
		return
	}

	out := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.MessageFromRow(row))
	}
	c.JSON(http.StatusOK, out)
}

// MarkMessagesRead stamps every unread message in the session that was
// sent by the other party.
func (ct *Controller) MarkMessagesRead(c *gin.Context) {
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

	rows, err := ct.scoped(c).Update(c.Request.Context(), "messages",
		[]store.Filter{
			store.Eq("session_id", session.ID),
			store.Neq("sender_id", user.ID),
			{Column: "read_at", Op: "isnull"},
		},
		store.Row{"read_at": time.Now().UTC()})
	if err != nil {
		ct.Log.Error("mark messages read", zap.Error(err), zap.String("session_id", session.ID))
		security.SendStoreError(c, err, "Failed to mark messages read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": len(rows)})
}
