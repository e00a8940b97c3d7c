package middleware

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/aprovatotal/validador-questoes-backend/internal/auth"
	"github.com/aprovatotal/validador-questoes-backend/internal/models"
	"github.com/aprovatotal/validador-questoes-backend/internal/repository"
)

const principalKey = "principal"

// AuthMiddleware creates a Gin middleware for JWT bearer authentication.
// After the access token verifies, the identity is re-resolved from the store
// so a deactivated account is rejected even holding a structurally valid
// token, and role/discipline changes take effect immediately.
func AuthMiddleware(tokens *auth.TokenManager, userRepo repository.UserRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer <token>"})
			c.Abort()
			return
		}

		claims, err := tokens.VerifyAccess(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
				c.Abort()
				return
			}
			logger.Debug("Invalid access token", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		user, err := userRepo.GetUserByUUID(claims.Subject)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				logger.Error("Failed to resolve token subject", zap.Error(err))
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}
		if !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is inactive"})
			c.Abort()
			return
		}

		SetPrincipal(c, &models.Principal{
			UUID:        user.UUID,
			Name:        user.Name,
			Email:       user.Email,
			Role:        user.Role,
			Disciplines: user.Disciplines,
		})

		c.Next()
	}
}

// SetPrincipal attaches the principal to the request context under the key
// GetPrincipal reads. Handler tests use it to stand in for the middleware.
func SetPrincipal(c *gin.Context, p *models.Principal) {
	c.Set(principalKey, p)
}

// GetPrincipal returns the principal the auth middleware attached to the
// request context.
func GetPrincipal(c *gin.Context) *models.Principal {
	return c.MustGet(principalKey).(*models.Principal)
}
