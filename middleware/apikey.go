package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ValidateAPIKey guards back-office routes with the X-API-KEY header. An
// unset key locks the routes instead of opening them.
func ValidateAPIKey(key string) gin.HandlerFunc {
	if key == "" {
		log.Println("⚠️ ADMIN_API_KEY is not set, admin routes will reject every request")
	}
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-KEY")
		if key == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key", "code": "not_authenticated"})
			return
		}
		c.Next()
	}
}
