package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chatty-im/chatty/internal/crypto"
	"github.com/chatty-im/chatty/internal/wire"
)

// SessionCookie is the cookie carrying the signed session token. The client
// extracts it for the realtime handshake.
const SessionCookie = "jwt"

// AuthMiddleware validates the session token from the jwt cookie or a Bearer
// header and stores the authenticated user id in the context.
func AuthMiddleware(jwtManager *crypto.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if cookie, err := c.Cookie(SessionCookie); err == nil {
			token = cookie
		}
		if token == "" {
			if authHeader := c.GetHeader("Authorization"); authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && parts[0] == "Bearer" {
					token = parts[1]
				}
			}
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, wire.ErrorResponse{Message: "Unauthorized - no token provided"})
			c.Abort()
			return
		}

		userID, err := jwtManager.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, wire.ErrorResponse{Message: "Unauthorized - invalid token"})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// GetUserID extracts the authenticated user id from the Gin context.
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	return userID.(string), true
}
