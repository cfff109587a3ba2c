package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const AdminActorKey = "adminActor"

// AdminKeyMiddleware compares the X-Admin-Key header with a bcrypt hash. Without a
// configured hash every admin call is refused.
func AdminKeyMiddleware(keyHash string, log *zap.Logger) gin.HandlerFunc {
	if keyHash == "" {
		log.Warn("AdminKeyMiddleware(): ADMIN_KEY_HASH is not set, admin endpoints disabled")
	}
	return func(c *gin.Context) {
		if keyHash == "" {
			abort(c, http.StatusForbidden, "Admin access is disabled")
			return
		}
		clientKey := c.GetHeader("X-Admin-Key")
		if clientKey == "" || bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(clientKey)) != nil {
			log.Warn("AdminKeyMiddleware(): rejected admin key", zap.String("ip", c.ClientIP()))
			abort(c, http.StatusUnauthorized, "Invalid admin key")
			return
		}
		c.Set(AdminActorKey, "admin@"+c.ClientIP())
		c.Next()
	}
}
