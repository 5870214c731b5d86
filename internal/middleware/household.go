package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/household-apps/todo-service/internal/constants"
	apierrors "github.com/household-apps/todo-service/internal/errors"
)

// RequireHouseholdContext extracts the household and user the gateway
// resolved from the caller's token. Requests missing either header never
// passed the gateway and are rejected.
func RequireHouseholdContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		householdID := c.GetHeader(constants.HeaderHouseholdID)
		if householdID == "" {
			apierrors.Unauthorized(c, "missing household context")
			c.Abort()
			return
		}

		userID := c.GetHeader(constants.HeaderUserID)
		if userID == "" {
			apierrors.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyHouseholdID, householdID)
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetHouseholdID retrieves the current household ID from context
func GetHouseholdID(c *gin.Context) (string, bool) {
	v, exists := c.Get(constants.ContextKeyHouseholdID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
