package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"bookshelf-server/database"
	"bookshelf-server/session"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// setupTest wires the handlers to a sqlmock-backed database and a fresh
// in-memory session store, with the same routes main registers.
func setupTest(t *testing.T) (sqlmock.Sqlmock, *gin.Engine, *session.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := session.NewMemoryStore()
	InitializeHandlers(&database.DB{DB: db}, store, time.Hour)

	router := gin.New()
	router.LoadHTMLGlob("../templates/*.html")

	router.GET("/register", ShowRegister)
	router.POST("/register", Register)
	router.GET("/login", ShowLogin)
	router.POST("/login", Login)
	router.GET("/logout", Logout)

	protected := router.Group("/")
	protected.Use(RequireLogin())
	{
		protected.GET("/", SearchPage)
		protected.POST("/", Search)
		protected.GET("/book/:isbn", BookDetail)
		protected.POST("/book/:isbn", SubmitReview)
	}

	return mock, router, store
}

// loginAs plants a session in the store and returns the matching cookie.
func loginAs(t *testing.T, store session.Store, userID, username string) *http.Cookie {
	t.Helper()

	sessionID, err := session.GenerateID()
	require.NoError(t, err)

	err = store.Create(context.Background(), session.Session{
		SessionID: sessionID,
		UserID:    userID,
		Username:  username,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	return &http.Cookie{Name: session.CookieName, Value: sessionID}
}

func doGet(router http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doPostForm(router http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
