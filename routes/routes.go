package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/msafryx/carelum-backend/auth"
	"github.com/msafryx/carelum-backend/controllers"
	"github.com/msafryx/carelum-backend/models"
	"github.com/msafryx/carelum-backend/security"
)

// Register mounts every API route on rg.
func Register(rg *gin.RouterGroup, ct *controllers.Controller, resolver *auth.Resolver) {
	// Health check endpoint (no auth required)
	rg.GET("/health", ct.HealthCheck)

	// Apply authentication middleware to all other routes
	rg.Use(security.AuthMiddleware(resolver))

	users := rg.Group("/users")
	{
		users.GET("/me", ct.GetMe)
		users.PUT("/me", ct.UpdateMe)
		users.PUT("/me/location", ct.UpdateMyLocation)
		users.GET("/sitters", ct.ListSitters)
	}

	sessions := rg.Group("/sessions")
	{
		sessions.POST("", security.RequireRole(models.RoleParent), ct.CreateSession)
		sessions.GET("", ct.ListMySessions)
		sessions.GET("/requests", security.RequireRole(models.RoleSitter), ct.OpenRequests)
		sessions.GET("/:id", ct.GetSession)
		sessions.PATCH("/:id", ct.UpdateSession)
		sessions.DELETE("/:id", ct.CancelSession)
		sessions.GET("/:id/alerts", ct.ListSessionAlerts)
		sessions.GET("/:id/messages", ct.ListSessionMessages)
		sessions.POST("/:id/messages/read", ct.MarkMessagesRead)
		sessions.GET("/:id/gps", ct.SessionLocationHistory)
		sessions.GET("/:id/gps/latest", ct.SessionLatestLocation)
	}

	children := rg.Group("/children")
	{
		children.POST("", security.RequireRole(models.RoleParent), ct.CreateChild)
		children.GET("", security.RequireRole(models.RoleParent), ct.ListMyChildren)
		children.GET("/:id", ct.GetChild)
		children.PUT("/:id", security.RequireRole(models.RoleParent), ct.UpdateChild)
		children.DELETE("/:id", security.RequireRole(models.RoleParent), ct.DeleteChild)
		children.GET("/:id/instructions", ct.GetChildInstructions)
		children.PUT("/:id/instructions", security.RequireRole(models.RoleParent), ct.UpsertChildInstructions)
	}

	alerts := rg.Group("/alerts")
	{
		alerts.POST("", ct.CreateAlert)
		alerts.POST("/:id/acknowledge", ct.AcknowledgeAlert)
		alerts.POST("/:id/resolve", ct.ResolveAlert)
	}

	messages := rg.Group("/messages")
	{
		messages.POST("", ct.SendMessage)
	}

	gps := rg.Group("/gps")
	{
		gps.POST("", security.RequireRole(models.RoleSitter), ct.TrackLocation)
	}

	admin := rg.Group("/admin", security.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", ct.AdminListUsers)
		admin.GET("/users/:id", ct.AdminGetUser)
		admin.PUT("/users/:id", ct.AdminUpdateUser)
		admin.DELETE("/users/:id", ct.AdminDeleteUser)
		admin.GET("/stats", ct.AdminStats)
	}

	rg.POST("/predict", ct.PredictCry)
	bot := rg.Group("/bot")
	{
		bot.POST("/ask", ct.BotAsk)
		bot.POST("/update", ct.BotUpdate)
	}
}
