package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireLogin guards pages that need an authenticated user. Without a valid
// session the request is redirected to the login page and the wrapped
// handler never runs.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := currentSession(c)
		if s == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		// Hand the session identity to the handler
		c.Set("user_id", s.UserID)
		c.Set("username", s.Username)
		c.Next()
	}
}
