package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resto-system/internal/apperrors"
	"resto-system/internal/auth"
	"resto-system/internal/utils"
)

const identityKey = "identity"

// JWTAuth verifies the bearer token and stores the caller's identity on the
// gin context.
func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenStr) == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		claims, err := utils.ParseToken(secret, strings.TrimSpace(tokenStr))
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		id, err := claims.Identity()
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by JWTAuth, or the zero identity.
func IdentityFrom(c *gin.Context) auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(auth.Identity); ok {
			return id
		}
	}
	return auth.Identity{}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
		"error":   apperrors.ErrUnauthorized.Code,
	})
}
