package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const userIDKey = "CurrentUserID"

// InjectUser copies the session's user id into the request context so
// handlers can scope queries without touching the session store again.
func InjectUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		if raw := sess.Get("user_id"); raw != nil {
			if uid, ok := raw.(uint); ok && uid > 0 {
				c.Set(userIDKey, uid)
			}
		}

		c.Next()
	}
}

// UserID returns the authenticated user's id, or nil for anonymous callers.
func UserID(c *gin.Context) *uint {
	if raw, ok := c.Get(userIDKey); ok {
		if uid, ok := raw.(uint); ok {
			return &uid
		}
	}
	return nil
}
