package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/msafryx/carelum-backend/models"
	"github.com/msafryx/carelum-backend/security"
	"github.com/msafryx/carelum-backend/store"
)

type AdminUpdateUserInput struct {
	DisplayName *string  `json:"displayName"`
	Role        *string  `json:"role"`
	IsActive    *bool    `json:"isActive"`
	IsVerified  *bool    `json:"isVerified"`
	HourlyRate  *float64 `json:"hourlyRate"`
}

// AdminListUsers returns every user, optionally narrowed by role.
func (ct *Controller) AdminListUsers(c *gin.Context) {
	q := store.Query{OrderBy: "created_at", Desc: true}
	if raw := c.Query("role"); raw != "" {
		role := models.ParseRole(raw)
		if role == "" {
			security.SendValidationError(c, "Unknown role", raw)
			return
		}
		if role == models.RoleSitter {
			// Stored rows may still carry the legacy spelling.
			q.Filters = append(q.Filters, store.In("role", "sitter", "babysitter"))
		} else {
			q.Filters = append(q.Filters, store.Eq("role", string(role)))
		}
	}

	rows, err := ct.Store.Select(c.Request.Context(), "users", q)
	if err != nil {
		ct.Log.Error("admin list users", zap.Error(err))
		security.SendStoreError(c, err, "Failed to load users")
		return
	}

	out := make([]models.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.UserFromRow(row))
	}
	c.JSON(http.StatusOK, out)
}

func (ct *Controller) AdminGetUser(c *gin.Context) {
	rows, err := ct.Store.Select(c.Request.Context(), "users", store.Query{
		Filters: []store.Filter{store.Eq("id", c.Param("id"))},
		Limit:   1,
	})
	if err != nil {
		security.SendStoreError(c, err, "Failed to load user")
		return
	}
	if len(rows) == 0 {
		security.SendNotFoundError(c, "user")
		return
	}
	c.JSON(http.StatusOK, models.UserFromRow(rows[0]))
}

// AdminUpdateUser patches a user account. This is the only endpoint
// that can change a role.
func (ct *Controller) AdminUpdateUser(c *gin.Context) {
	var input AdminUpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	patch := store.Row{"updated_at": time.Now().UTC()}
	if input.DisplayName != nil {
		patch["display_name"] = *input.DisplayName
	}
	if input.Role != nil {
		role := models.ParseRole(*input.Role)
		if role == "" {
			security.SendValidationError(c, "Unknown role", *input.Role)
			return
		}
		patch["role"] = string(role)
	}
	if input.IsActive != nil {
		patch["is_active"] = *input.IsActive
	}
	if input.IsVerified != nil {
		patch["is_verified"] = *input.IsVerified
	}
	if input.HourlyRate != nil {
		patch["hourly_rate"] = *input.HourlyRate
	}
	if len(patch) == 1 {
		security.SendValidationError(c, "No updatable fields in request body", nil)
		return
	}

	rows, err := ct.Store.Update(c.Request.Context(), "users",
		[]store.Filter{store.Eq("id", c.Param("id"))}, patch)
	if err != nil {
		ct.Log.Error("admin update user", zap.Error(err), zap.String("user_id", c.Param("id")))
		security.SendStoreError(c, err, "Failed to update user")
		return
	}
	if len(rows) == 0 {
		security.SendNotFoundError(c, "user")
		return
	}
	c.JSON(http.StatusOK, models.UserFromRow(rows[0]))
}

func (ct *Controller) AdminDeleteUser(c *gin.Context) {
	affected, err := ct.Store.Delete(c.Request.Context(), "users",
		[]store.Filter{store.Eq("id", c.Param("id"))})
	if err != nil {
		ct.Log.Error("admin delete user", zap.Error(err), zap.String("user_id", c.Param("id")))
		security.SendStoreError(c, err, "Failed to delete user")
		return
	}
	if affected == 0 {
		security.SendNotFoundError(c, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// AdminStats returns platform-wide counts for the dashboard.
func (ct *Controller) AdminStats(c *gin.Context) {
	ctx := c.Request.Context()

	parents, err := ct.Store.Count(ctx, "users", []store.Filter{store.Eq("role", "parent")})
	if err != nil {
		security.SendStoreError(c, err, "Failed to load stats")
		return
	}
	sitters, err := ct.Store.Count(ctx, "users", []store.Filter{store.In("role", "sitter", "babysitter")})
	if err != nil {
		security.SendStoreError(c, err, "Failed to load stats")
		return
	}
	activeSessions, err := ct.Store.Count(ctx, "sessions", []store.Filter{store.Eq("status", "active")})
	if err != nil {
		security.SendStoreError(c, err, "Failed to load stats")
		return
	}
	openRequests, err := ct.Store.Count(ctx, "sessions", []store.Filter{store.In("status", "requested", "pending")})
	if err != nil {
		security.SendStoreError(c, err, "Failed to load stats")
		return
	}
	pendingVerifications, err := ct.Store.Count(ctx, "verification_requests", []store.Filter{store.Eq("status", "pending")})
	if err != nil {
		security.SendStoreError(c, err, "Failed to load stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"parents":              parents,
		"sitters":              sitters,
		"activeSessions":       activeSessions,
		"openRequests":         openRequests,
		"pendingVerifications": pendingVerifications,
	})
}
