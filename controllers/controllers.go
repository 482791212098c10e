// Package controllers holds the HTTP handlers. Handlers hang off a
// Controller value carrying the injected store and services; there is
// no package-level database handle.
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/msafryx/carelum-backend/auth"
	"github.com/msafryx/carelum-backend/discovery"
	"github.com/msafryx/carelum-backend/security"
	"github.com/msafryx/carelum-backend/store"
)

type Controller struct {
	Store     store.Store
	Discovery *discovery.Engine
	Log       *zap.Logger
}

func New(st store.Store, eng *discovery.Engine, log *zap.Logger) *Controller {
	return &Controller{Store: st, Discovery: eng, Log: log}
}

func (ct *Controller) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "carelum-backend"})
}

// currentUser pulls the resolved identity out of the request context,
// aborting with 401 when the auth middleware did not run.
func (ct *Controller) currentUser(c *gin.Context) (auth.CurrentUser, bool) {
	user, ok := security.CurrentUser(c)
	if !ok {
		security.SendError(c, http.StatusUnauthorized, security.CodeUnauthorized, "User not authenticated",
			"User authentication is required to access this resource", nil)
		c.Abort()
	}
	return user, ok
}

// scoped returns a store client that executes with the caller's bearer
// credential so row-level security applies.
func (ct *Controller) scoped(c *gin.Context) store.Store {
	if token := security.BearerToken(c); token != "" {
		return ct.Store.WithToken(token)
	}
	return ct.Store
}
