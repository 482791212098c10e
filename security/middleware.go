package security

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/msafryx/carelum-backend/auth"
	"github.com/msafryx/carelum-backend/models"
)

const (
	ctxUserKey  = "current_user"
	ctxTokenKey = "bearer_token"
)

// AuthMiddleware creates a Gin middleware that resolves the caller's
// identity from the Authorization header. The raw bearer token is kept
// in the context so downstream handlers can issue row-scoped queries.
func AuthMiddleware(resolver *auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("Authorization")
		if tokenStr == "" {
			SendError(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required",
				"Please provide a valid authorization token in the request header", nil)
			c.Abort()
			return
		}

		// Remove "Bearer " prefix if present
		if strings.HasPrefix(tokenStr, "Bearer ") {
			tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")
		}

		user, err := resolver.Resolve(c.Request.Context(), tokenStr)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				SendError(c, http.StatusUnauthorized, CodeTokenExpired, "Token expired",
					"The provided token has expired. Please login again to get a new token", nil)
			case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
				SendError(c, http.StatusUnauthorized, CodeInvalidToken, "Invalid token",
					"The provided token is invalid or malformed. Please login again to get a new token", nil)
			default:
				SendError(c, http.StatusUnauthorized, CodeInvalidToken, "Authentication failed",
					"Unable to authenticate the request. Please login again", nil)
			}
			c.Abort()
			return
		}

		c.Set(ctxUserKey, user)
		c.Set(ctxTokenKey, tokenStr)
		c.Next()
	}
}

// CurrentUser returns the identity resolved by AuthMiddleware.
func CurrentUser(c *gin.Context) (auth.CurrentUser, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return auth.CurrentUser{}, false
	}
	user, ok := v.(auth.CurrentUser)
	return user, ok
}

// BearerToken returns the raw token AuthMiddleware stored for the
// request.
func BearerToken(c *gin.Context) string {
	return c.GetString(ctxTokenKey)
}

// RequireRole creates a Gin middleware for role-based access control.
// Admins pass every gate. The role comes from the already-resolved
// identity; no extra lookup per request.
func RequireRole(expectedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			SendError(c, http.StatusUnauthorized, CodeUnauthorized, "User not authenticated",
				"User authentication is required to access this resource", nil)
			c.Abort()
			return
		}

		if user.Role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, expected := range expectedRoles {
			if user.Role == expected {
				c.Next()
				return
			}
		}

		names := make([]string, len(expectedRoles))
		for i, r := range expectedRoles {
			names[i] = string(r)
		}
		SendError(c, http.StatusForbidden, CodeForbidden, "Insufficient permissions",
			"This resource requires one of the following roles: "+strings.Join(names, ", "), nil)
		c.Abort()
	}
}

// CORSMiddleware handles cross-origin requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, apikey")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
