package handlers

import (
	"database/sql"
	"net/http"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

var (
	bookLookup   = regexp.QuoteMeta(`SELECT isbn, title, author, year FROM books WHERE isbn`)
	reviewsJoin  = `(?s)FROM reviews r JOIN users u.*ORDER BY r\.created_at DESC`
	reviewAgg    = regexp.QuoteMeta(`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM reviews`)
	reviewCheck  = regexp.QuoteMeta(`SELECT id FROM reviews WHERE user_id`)
	reviewInsert = `INSERT INTO reviews`
	reviewUpdate = `UPDATE reviews SET rating`
)

const testISBN = "0380795272"

func expectBookRow(mock sqlmock.Sqlmock) {
	rows := sqlmock.NewRows([]string{"isbn", "title", "author", "year"}).
		AddRow(testISBN, "Krondor: The Betrayal", "Raymond E. Feist", 1998)
	mock.ExpectQuery(bookLookup).WithArgs(testISBN).WillReturnRows(rows)
}

func expectDetailQueries(mock sqlmock.Sqlmock, reviews *sqlmock.Rows, count int, average float64) {
	mock.ExpectQuery(reviewsJoin).WithArgs(testISBN).WillReturnRows(reviews)
	mock.ExpectQuery(reviewAgg).WithArgs(testISBN).
		WillReturnRows(sqlmock.NewRows([]string{"count", "avg"}).AddRow(count, average))
}

func emptyReviewRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"rating", "review_text", "created_at", "username", "avatar"})
}

func TestBookDetailUnknownISBN(t *testing.T) {
	mock, router, store := setupTest(t)
	cookie := loginAs(t, store, testUserID, "alice")

	mock.ExpectQuery(bookLookup).WithArgs("0000000000").WillReturnError(sql.ErrNoRows)

	w := doGet(router, "/book/0000000000", cookie)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Book not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookDetailShowsReviewsAndAggregate(t *testing.T) {
	mock, router, store := setupTest(t)
	cookie := loginAs(t, store, testUserID, "alice")

	expectBookRow(mock)
	reviews := emptyReviewRows().
		AddRow(5, "Loved it", time.Now(), "bob", "https://api.dicebear.com/7.x/initials/svg?seed=bob").
		AddRow(3, "Decent", time.Now().Add(-time.Hour), "carol", "https://api.dicebear.com/7.x/initials/svg?seed=carol")
	expectDetailQueries(mock, reviews, 2, 4.0)

	w := doGet(router, "/book/"+testISBN, cookie)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Krondor: The Betrayal")
	assert.Contains(t, body, "2 review(s), average 4.00/5")
	assert.Contains(t, body, "bob")
	assert.Contains(t, body, "★★★★★")
	assert.Contains(t, body, "carol")
	assert.Contains(t, body, "★★★☆☆")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookDetailWithNoReviews(t *testing.T) {
	mock, router, store := setupTest(t)
	cookie := loginAs(t, store, testUserID, "alice")

	expectBookRow(mock)
	expectDetailQueries(mock, emptyReviewRows(), 0, 0)

	w := doGet(router, "/book/"+testISBN, cookie)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "0 review(s), average 0.00/5")
	assert.Contains(t, body, "No reviews yet.")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewTextIsEscaped(t *testing.T) {
	mock, router, store := setupTest(t)
	cookie := loginAs(t, store, testUserID, "alice")

	expectBookRow(mock)
	reviews := emptyReviewRows().
		AddRow(4, "<script>alert('x')</script>", time.Now(), "mallory", "")
	expectDetailQueries(mock, reviews, 1, 4.0)

	w := doGet(router, "/book/"+testISBN, cookie)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "&lt;script&gt;")
	assert.NotContains(t, body, "<script>alert")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitReviewRejectsBadInputUniformly(t *testing.T) {
	tests := []struct {
		name   string
		rating string
		text   string
	}{
		{"rating zero", "0", "fine book"},
		{"rating six", "6", "fine book"},
		{"rating non-numeric", "abc", "fine book"},
		{"blank text", "4", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, router, store := setupTest(t)
			cookie := loginAs(t, store, testUserID, "alice")

			expectBookRow(mock)
			// Rejection re-renders the detail page, not an error page
			expectDetailQueries(mock, emptyReviewRows(), 0, 0)

			w := doPostForm(router, "/book/"+testISBN, url.Values{
				"rating":      {tt.rating},
				"review_text": {tt.text},
			}, cookie)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "Please enter 1–5 stars and a comment.")
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSubmitReviewInsertsFirstReview(t *testing.T) {
	mock, router, store := setupTest(t)
	cookie := loginAs(t, store, testUserID, "alice")

	expectBookRow(mock)
	mock.ExpectQuery(reviewCheck).WithArgs(testUserID, testISBN).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(reviewInsert).
		WithArgs(sqlmock.AnyArg(), testUserID, testISBN, 5, "A classic.").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doPostForm(router, "/book/"+testISBN, url.Values{
		"rating":      {"5"},
		"review_text": {"A classic."},
	}, cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/book/"+testISBN, w.Header().Get("Location"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitReviewOverwritesExisting(t *testing.T) {
	mock, router, store := setupTest(t)
	cookie := loginAs(t, store, testUserID, "alice")

	expectBookRow(mock)
	existing := sqlmock.NewRows([]string{"id"}).
		AddRow("22222222-2222-2222-2222-222222222222")
	mock.ExpectQuery(reviewCheck).WithArgs(testUserID, testISBN).WillReturnRows(existing)
	mock.ExpectExec(reviewUpdate).
		WithArgs(2, "Changed my mind.", testUserID, testISBN).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doPostForm(router, "/book/"+testISBN, url.Values{
		"rating":      {"2"},
		"review_text": {"Changed my mind."},
	}, cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/book/"+testISBN, w.Header().Get("Location"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitReviewInsertRaceFallsBackToUpdate(t *testing.T) {
	mock, router, store := setupTest(t)
	cookie := loginAs(t, store, testUserID, "alice")

	expectBookRow(mock)
	mock.ExpectQuery(reviewCheck).WithArgs(testUserID, testISBN).WillReturnError(sql.ErrNoRows)
	// A concurrent submission inserted first; the unique index fires
	mock.ExpectExec(reviewInsert).
		WithArgs(sqlmock.AnyArg(), testUserID, testISBN, 4, "Great.").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectExec(reviewUpdate).
		WithArgs(4, "Great.", testUserID, testISBN).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doPostForm(router, "/book/"+testISBN, url.Values{
		"rating":      {"4"},
		"review_text": {"Great."},
	}, cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/book/"+testISBN, w.Header().Get("Location"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
