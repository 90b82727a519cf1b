package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/edricrolandli/cssc-api/internal/models"
	appErrors "github.com/edricrolandli/cssc-api/pkg/errors"
	"github.com/edricrolandli/cssc-api/pkg/response"
)

// RequireRoles blocks callers whose JWT role is not in the allowed set.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentClaims extracts the authenticated claims set by the JWT middleware.
func CurrentClaims(c *gin.Context) *models.JWTClaims {
	claimsValue, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := claimsValue.(*models.JWTClaims)
	return claims
}
