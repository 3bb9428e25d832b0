package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"bookshelf-server/models"
	"bookshelf-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", navData(c))
}

// Register creates an account and logs the new user straight in.
func Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if username == "" || strings.TrimSpace(password) == "" {
		renderRegister(c, "Username and password are required.")
		return
	}

	// Username match is case-sensitive and exact
	var existingID string
	err := DB.QueryRow(`SELECT id FROM users WHERE username = $1`, username).Scan(&existingID)
	if err == nil {
		renderRegister(c, "That username is already taken.")
		return
	}
	if err != sql.ErrNoRows {
		renderServerError(c)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		renderServerError(c)
		return
	}

	user := models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Avatar:       utils.AvatarForUsername(username),
	}

	_, err = DB.Exec(
		`INSERT INTO users (id, username, password_hash, avatar) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Username, user.PasswordHash, user.Avatar,
	)
	if err != nil {
		renderServerError(c)
		return
	}

	if err := startSession(c, user.ID.String(), user.Username); err != nil {
		renderServerError(c)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// ShowLogin renders the login form. Reaching the login page always starts
// from a logged-out state, so any existing session is cleared first.
func ShowLogin(c *gin.Context) {
	clearSession(c)
	c.HTML(http.StatusOK, "login.html", gin.H{"LoggedIn": false})
}

// Login verifies credentials and creates a session. Unknown usernames and
// wrong passwords produce the identical message so the response never
// reveals which one was wrong.
func Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	var user models.User
	err := DB.QueryRow(
		`SELECT id, username, password_hash FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash)

	if err == sql.ErrNoRows {
		renderLogin(c, "Invalid username or password.")
		return
	}
	if err != nil {
		renderServerError(c)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		renderLogin(c, "Invalid username or password.")
		return
	}

	if err := startSession(c, user.ID.String(), user.Username); err != nil {
		renderServerError(c)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// Logout clears the session and returns to the login page. Idempotent.
func Logout(c *gin.Context) {
	clearSession(c)
	c.Redirect(http.StatusFound, "/login")
}

func renderRegister(c *gin.Context, message string) {
	data := navData(c)
	data["Message"] = message
	c.HTML(http.StatusOK, "register.html", data)
}

func renderLogin(c *gin.Context, message string) {
	c.HTML(http.StatusOK, "login.html", gin.H{"LoggedIn": false, "Message": message})
}
