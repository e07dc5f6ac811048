package middleware

import (
	"net/http"
	"strings"

	"todoapp/internal/auth"
	"todoapp/internal/identity"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey    = "user_id"
	PrincipalKey = "principal"
)

func JWTAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	secret := []byte(jwtSecret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := auth.ParseToken(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(PrincipalKey, claims)
		c.Next()
	}
}

// CurrentPrincipal returns the caller stored by JWTAuthMiddleware.
func CurrentPrincipal(c *gin.Context) (identity.Claims, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return identity.Claims{}, false
	}
	claims, ok := v.(identity.Claims)
	return claims, ok
}
