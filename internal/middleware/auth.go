package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/models"
	"github.com/brigadehq/roster/internal/services"
)

const (
	MemberIDKey  = "member_id"
	BrigadeIDKey = "brigade_id"
	RoleKey      = "role"
)

// SessionAuth validates the bearer token and attaches its claims to the context.
func SessionAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := ContextLogger(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Info("Authorization header is missing")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Info("Invalid authorization header format")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		token, err := tokens.ValidateToken(parts[1])
		if err != nil {
			logger.Info("Token validation failed", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(MemberIDKey, token.MemberID)
		c.Set(BrigadeIDKey, token.BrigadeID)
		c.Set(RoleKey, token.Role)
		c.Next()
	}
}

// RequireAdmin rejects requests whose session does not carry the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(RoleKey)
		if !exists || role.(models.Role) != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionMemberID returns the authenticated member ID from the context.
func SessionMemberID(c *gin.Context) uuid.UUID {
	if v, exists := c.Get(MemberIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// SessionBrigadeID returns the authenticated member's brigade ID from the context.
func SessionBrigadeID(c *gin.Context) uuid.UUID {
	if v, exists := c.Get(BrigadeIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
