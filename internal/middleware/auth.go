package middleware

import (
	"errors"
	"net/http"
	"strings"

	"CareerPortal_ResultsProject/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Context keys set by AuthMiddleware.
const (
	RecordIDKey = "recordID"
	CodeKey     = "code"
)

// TokenValidator checks session tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// AuthMiddleware accepts a bearer token, or a token query parameter for WebSocket
// clients that cannot set headers.
func AuthMiddleware(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		claims, err := v.Validate(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abort(c, http.StatusUnauthorized, "Session has expired")
				return
			}
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		c.Set(RecordIDKey, claims.RecordID)
		c.Set(CodeKey, claims.Code)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return "", false
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		return token, token != ""
	}
	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}
