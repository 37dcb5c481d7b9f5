package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erapor-sd-api/internal/middleware"
	"github.com/noah-isme/erapor-sd-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// scopedClass resolves the effective class for a teacher request: admins
// use the requested value, teachers always get their own class.
func scopedClass(c *gin.Context, requested string) string {
	claims := claimsFromContext(c)
	if claims == nil || claims.Role == models.RoleAdmin {
		return requested
	}
	return claims.ClassLevel
}
