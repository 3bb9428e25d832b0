package handlers

import (
	"net/http"
	"time"

	"bookshelf-server/database"
	"bookshelf-server/session"

	"github.com/gin-gonic/gin"
)

var (
	DB         *database.DB
	Sessions   session.Store
	sessionTTL time.Duration
)

// InitializeHandlers binds the collaborators shared by all handlers.
func InitializeHandlers(db *database.DB, store session.Store, ttl time.Duration) {
	DB = db
	Sessions = store
	sessionTTL = ttl
}

// currentSession resolves the session cookie against the store. Any failure
// along the way is treated as "not logged in".
func currentSession(c *gin.Context) *session.Session {
	sessionID, err := c.Cookie(session.CookieName)
	if err != nil || sessionID == "" {
		return nil
	}

	s, err := Sessions.Get(c.Request.Context(), sessionID)
	if err != nil || s == nil {
		return nil
	}
	return s
}

// startSession creates a server-side session for the user and issues the
// cookie pointing at it.
func startSession(c *gin.Context, userID, username string) error {
	sessionID, err := session.GenerateID()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(sessionTTL)
	s := session.Session{
		SessionID: sessionID,
		UserID:    userID,
		Username:  username,
		ExpiresAt: expiresAt,
	}
	if err := Sessions.Create(c.Request.Context(), s); err != nil {
		return err
	}

	session.SetCookie(c.Writer, sessionID, expiresAt)
	return nil
}

// clearSession deletes the server-side session (if any) and clears the
// cookie. Safe to call with no session present.
func clearSession(c *gin.Context) {
	if sessionID, err := c.Cookie(session.CookieName); err == nil && sessionID != "" {
		_ = Sessions.Delete(c.Request.Context(), sessionID)
	}
	session.ClearCookie(c.Writer)
}

// navData fills the fields the navigation bar needs on every page.
func navData(c *gin.Context) gin.H {
	if username := c.GetString("username"); username != "" {
		return gin.H{"LoggedIn": true, "Username": username}
	}
	if s := currentSession(c); s != nil {
		return gin.H{"LoggedIn": true, "Username": s.Username}
	}
	return gin.H{"LoggedIn": false}
}

func renderServerError(c *gin.Context) {
	c.HTML(http.StatusInternalServerError, "error.html", navData(c))
}
