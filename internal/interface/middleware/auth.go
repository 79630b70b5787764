package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskflow/pkg/helpers"
	"taskflow/pkg/response"
)

// CtxUserIDKey is the Gin context key carrying the resolved identity.
const CtxUserIDKey = "userID"

// Auth resolves the bearer credential to a user identity. The token comes
// from the Authorization header or the access_token cookie; besides parsing
// it, the session ID inside must still be the user's current one, so logout
// and re-login invalidate older tokens.
func Auth(sessions *helpers.SessionStore, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}
		ok, err := sessions.Resolve(c.Request.Context(), claims.UserID, claims.SessionID)
		if err != nil || !ok {
			response.Error[any](c, http.StatusUnauthorized, "session expired or revoked", nil)
			c.Abort()
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
	}
	if tok, err := c.Cookie("access_token"); err == nil {
		return tok
	}
	return ""
}
