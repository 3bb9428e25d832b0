package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bookshelf-server/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// reviewView is a review joined with its author, shaped for the template.
type reviewView struct {
	Username string
	Avatar   string
	Stars    string
	Text     string
	PostedAt string
}

// BookDetail shows a book's metadata, its aggregate rating and all reviews,
// newest first.
func BookDetail(c *gin.Context) {
	book, err := loadBook(c.Param("isbn"))
	if err == sql.ErrNoRows {
		c.HTML(http.StatusNotFound, "notfound.html", navData(c))
		return
	}
	if err != nil {
		renderServerError(c)
		return
	}

	renderBookPage(c, book, "")
}

// SubmitReview upserts the current user's review for the book, then
// redirects back to the detail page so a refresh cannot double-submit.
func SubmitReview(c *gin.Context) {
	book, err := loadBook(c.Param("isbn"))
	if err == sql.ErrNoRows {
		c.HTML(http.StatusNotFound, "notfound.html", navData(c))
		return
	}
	if err != nil {
		renderServerError(c)
		return
	}

	// A rating that fails to parse becomes 0 and is rejected by the same
	// range check as an out-of-range value, so every bad rating produces
	// the one message below.
	rating, err := strconv.Atoi(strings.TrimSpace(c.PostForm("rating")))
	if err != nil {
		rating = 0
	}
	text := strings.TrimSpace(c.PostForm("review_text"))

	if rating < 1 || rating > 5 || text == "" {
		renderBookPage(c, book, "Please enter 1–5 stars and a comment.")
		return
	}

	userID := c.GetString("user_id")

	var reviewID uuid.UUID
	err = DB.QueryRow(
		`SELECT id FROM reviews WHERE user_id = $1 AND isbn = $2`,
		userID, book.ISBN,
	).Scan(&reviewID)

	switch {
	case err == sql.ErrNoRows:
		_, err = DB.Exec(
			`INSERT INTO reviews (id, user_id, isbn, rating, review_text, created_at)
			 VALUES ($1, $2, $3, $4, $5, now())`,
			uuid.New(), userID, book.ISBN, rating, text,
		)
		// A concurrent submission can win the insert; the unique index on
		// (user_id, isbn) turns the loser into an update.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			err = updateReview(userID, book.ISBN, rating, text)
		}
	case err == nil:
		err = updateReview(userID, book.ISBN, rating, text)
	}

	if err != nil {
		renderServerError(c)
		return
	}

	c.Redirect(http.StatusSeeOther, "/book/"+book.ISBN)
}

func loadBook(isbn string) (models.Book, error) {
	var book models.Book
	err := DB.QueryRow(
		`SELECT isbn, title, author, year FROM books WHERE isbn = $1`,
		isbn,
	).Scan(&book.ISBN, &book.Title, &book.Author, &book.Year)
	return book, err
}

func updateReview(userID, isbn string, rating int, text string) error {
	_, err := DB.Exec(
		`UPDATE reviews SET rating = $1, review_text = $2, created_at = now()
		 WHERE user_id = $3 AND isbn = $4`,
		rating, text, userID, isbn,
	)
	return err
}

func renderBookPage(c *gin.Context, book models.Book, message string) {
	rows, err := DB.Query(
		`SELECT r.rating, r.review_text, r.created_at, u.username, u.avatar
		 FROM reviews r JOIN users u ON r.user_id = u.id
		 WHERE r.isbn = $1
		 ORDER BY r.created_at DESC`,
		book.ISBN,
	)
	if err != nil {
		renderServerError(c)
		return
	}
	defer rows.Close()

	var reviews []reviewView
	for rows.Next() {
		var review models.Review
		var username, avatar string
		if err := rows.Scan(&review.Rating, &review.ReviewText, &review.CreatedAt, &username, &avatar); err != nil {
			renderServerError(c)
			return
		}
		reviews = append(reviews, reviewView{
			Username: username,
			Avatar:   avatar,
			Stars:    starBar(review.Rating),
			Text:     review.ReviewText,
			PostedAt: review.CreatedAt.Format("Jan 2, 2006"),
		})
	}
	if err := rows.Err(); err != nil {
		renderServerError(c)
		return
	}

	// Always derived from the review rows, never stored
	var count int
	var average float64
	err = DB.QueryRow(
		`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM reviews WHERE isbn = $1`,
		book.ISBN,
	).Scan(&count, &average)
	if err != nil {
		renderServerError(c)
		return
	}

	data := navData(c)
	data["Book"] = book
	data["Reviews"] = reviews
	data["ReviewCount"] = count
	data["AverageRating"] = average
	data["Message"] = message
	c.HTML(http.StatusOK, "book.html", data)
}

func starBar(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}
