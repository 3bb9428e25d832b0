// Seeds the books table from a CSV file with an isbn,title,author,year
// header row. Rows whose ISBN is already present are skipped, so the import
// can be re-run safely.
//
// Usage: go run scripts/import_books.go books.csv
package main

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("Usage: go run scripts/import_books.go <books.csv>")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: ", err)
	}

	file, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal("Failed to open CSV: ", err)
	}
	defer file.Close()

	imported, skipped, err := importBooks(db, csv.NewReader(file))
	if err != nil {
		log.Fatal("Import failed: ", err)
	}

	log.Printf("Imported %d books (%d skipped)", imported, skipped)
}

func importBooks(db *sql.DB, reader *csv.Reader) (imported, skipped int, err error) {
	records, err := reader.ReadAll()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read CSV: %w", err)
	}

	for i, record := range records {
		if i == 0 {
			// header row
			continue
		}
		if len(record) != 4 {
			log.Printf("Warning: line %d has %d fields, expected 4", i+1, len(record))
			skipped++
			continue
		}

		isbn, title, author := record[0], record[1], record[2]
		year, err := strconv.Atoi(record[3])
		if err != nil {
			log.Printf("Warning: line %d has a non-numeric year %q", i+1, record[3])
			skipped++
			continue
		}

		result, err := db.Exec(
			`INSERT INTO books (isbn, title, author, year) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (isbn) DO NOTHING`,
			isbn, title, author, year,
		)
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to insert %s: %w", isbn, err)
		}

		if rows, _ := result.RowsAffected(); rows == 0 {
			skipped++
		} else {
			imported++
		}
	}

	return imported, skipped, nil
}
