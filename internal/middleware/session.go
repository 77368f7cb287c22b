package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie carries the opaque session identifier scoping the
	// registration flow and login attempt counters to one browser.
	SessionCookie = "bb_session"
	sessionCtxKey = "session_id"

	// cookie lifetime; server-side values carry their own shorter TTLs
	sessionCookieMaxAge = 60 * 60 * 24
)

// SessionMiddleware guarantees every request carries a session ID, issuing a
// fresh uuid cookie when none is present.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sid, sessionCookieMaxAge, "/", "", false, true)
		}
		c.Set(sessionCtxKey, sid)
		c.Next()
	}
}

// SessionID returns the request's session identifier.
func SessionID(c *gin.Context) string {
	if v, ok := c.Get(sessionCtxKey); ok {
		if sid, ok := v.(string); ok {
			return sid
		}
	}
	return ""
}
