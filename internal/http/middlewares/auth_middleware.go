package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/notehub/internal/actorctx"
	"github.com/geocoder89/notehub/internal/auth"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the HttpOnly cookie that carries the session token.
const SessionCookie = "token"

// Keep this small interface so tests can fake it easily.
type SessionChecker interface {
	Session(token string) auth.Session
}

type AuthMiddleware struct {
	sessions SessionChecker
}

func NewAuthMiddleware(sessions SessionChecker) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireSession admits requests presenting a valid, unexpired session token
// and stashes the caller's identity on both the gin and request contexts.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := SessionToken(c)
		if raw == "" {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing session token")
			return
		}

		s := m.sessions.Session(raw)
		if !s.Valid {
			abortWithError(c, http.StatusUnauthorized, "session_expired", "Invalid or expired session")
			return
		}

		c.Set(CtxUserID, s.Claims.UserID)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), s.Claims.UserID))

		c.Next()
	}
}

// SessionToken returns the token from the session cookie, falling back to an
// Authorization: Bearer header.
func SessionToken(c *gin.Context) string {
	if raw, err := c.Cookie(SessionCookie); err == nil && raw != "" {
		return raw
	}

	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}
