package httpserver

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type ctxKey string

const customerTokenCtxKey ctxKey = "customerToken"

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// customerTokenMiddleware requires a bearer token and stores it in the request context.
func customerTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), customerTokenCtxKey, token)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// adminMiddleware rejects every request when no admin token is configured.
func adminMiddleware(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin access disabled"})
			return
		}
		token := bearerToken(c.Request)
		if subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			return
		}
		c.Next()
	}
}

func customerToken(ctx context.Context) string {
	token, _ := ctx.Value(customerTokenCtxKey).(string)
	return token
}
