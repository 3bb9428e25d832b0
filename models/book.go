package models

// Book is read-only in this system; the catalog is seeded by
// scripts/import_books.go.
type Book struct {
	ISBN   string `json:"isbn" db:"isbn"`
	Title  string `json:"title" db:"title"`
	Author string `json:"author" db:"author"`
	Year   int    `json:"year" db:"year"`
}

func (Book) TableName() string {
	return "books"
}

func (Book) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS books (
		isbn TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		year INT
	);`
}
