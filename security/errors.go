package security

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msafryx/carelum-backend/store"
)

// ErrorResponse is the standardized error envelope.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Common error codes
const (
	// Authentication errors
	CodeUnauthorized = "UNAUTHORIZED"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeInvalidToken = "INVALID_TOKEN"

	// Authorization errors
	CodeForbidden = "FORBIDDEN"

	// Domain errors
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeConflict          = "CONFLICT"

	// Validation errors
	CodeValidationError = "VALIDATION_ERROR"

	// Resource errors
	CodeResourceNotFound = "RESOURCE_NOT_FOUND"

	// Server errors
	CodeDatabaseError = "DATABASE_ERROR"
	CodeUnavailable   = "DB_UNAVAILABLE"
)

// SendError sends a standardized error response.
func SendError(c *gin.Context, statusCode int, errorCode, errorMessage, detailedMessage string, details interface{}) {
	response := ErrorResponse{
		Error:   errorMessage,
		Message: detailedMessage,
		Code:    errorCode,
	}
	if details != nil {
		response.Details = details
	}
	c.JSON(statusCode, response)
}

// SendValidationError sends a validation error response.
func SendValidationError(c *gin.Context, message string, details interface{}) {
	SendError(c, http.StatusBadRequest, CodeValidationError, "Validation failed", message, details)
}

// SendNotFoundError sends a not found error response.
func SendNotFoundError(c *gin.Context, resource string) {
	SendError(c, http.StatusNotFound, CodeResourceNotFound, "Resource not found",
		"The requested "+resource+" was not found", nil)
}

// SendForbiddenError sends an ownership/role rejection.
func SendForbiddenError(c *gin.Context, message string) {
	SendError(c, http.StatusForbidden, CodeForbidden, "Access denied", message, nil)
}

// SendDatabaseError sends a database error response.
func SendDatabaseError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, CodeDatabaseError, "Database error",
		message, nil)
}

// SendStoreError maps a row-store failure onto the wire: an unreachable
// store is 503 so clients can retry, anything else is a plain database
// error.
func SendStoreError(c *gin.Context, err error, message string) {
	if store.IsUnavailable(err) {
		SendError(c, http.StatusServiceUnavailable, CodeUnavailable, "Service unavailable",
			"The data store is temporarily unreachable. Please retry shortly", nil)
		return
	}
	SendDatabaseError(c, message)
}
