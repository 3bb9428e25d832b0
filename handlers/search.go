package handlers

import (
	"net/http"
	"strings"

	"bookshelf-server/models"

	"github.com/gin-gonic/gin"
)

// Results are capped; there is no pagination.
const searchResultLimit = 50

// SearchPage renders the search form. A q query parameter searches directly,
// so result pages can be linked to.
func SearchPage(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		data := navData(c)
		data["Query"] = ""
		c.HTML(http.StatusOK, "search.html", data)
		return
	}
	performSearch(c, query)
}

// Search handles the search form submission. An empty query is its own
// state, distinct from a query with no matches.
func Search(c *gin.Context) {
	query := strings.TrimSpace(c.PostForm("q"))
	if query == "" {
		data := navData(c)
		data["Query"] = ""
		data["Message"] = "Please type something."
		c.HTML(http.StatusOK, "search.html", data)
		return
	}
	performSearch(c, query)
}

// performSearch matches the query as a case-insensitive substring of isbn,
// title or author.
func performSearch(c *gin.Context, query string) {
	like := "%" + query + "%"

	rows, err := DB.Query(
		`SELECT isbn, title, author, year FROM books
		 WHERE isbn ILIKE $1 OR title ILIKE $1 OR author ILIKE $1
		 ORDER BY title LIMIT $2`,
		like, searchResultLimit,
	)
	if err != nil {
		renderServerError(c)
		return
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var book models.Book
		if err := rows.Scan(&book.ISBN, &book.Title, &book.Author, &book.Year); err != nil {
			renderServerError(c)
			return
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		renderServerError(c)
		return
	}

	data := navData(c)
	data["Searched"] = true
	data["Query"] = query
	data["Books"] = books
	c.HTML(http.StatusOK, "search.html", data)
}
