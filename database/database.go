package database

import (
	"database/sql"
	"fmt"
	"log"

	"bookshelf-server/models"

	_ "github.com/lib/pq"
)

type DB struct {
	*sql.DB
}

var Database *DB

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	Database = &DB{db}
	return Database, nil
}

// InitializeTables creates all tables if they don't exist
func (db *DB) InitializeTables() error {
	// gen_random_uuid() needs pgcrypto on Postgres < 13
	if _, err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`); err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	// Order matters: reviews references users and books
	tables := []interface{}{
		models.User{},
		models.Book{},
		models.Review{},
	}

	for _, model := range tables {
		if tableModel, ok := model.(interface {
			TableName() string
			CreateTableSQL() string
		}); ok {
			tableName := tableModel.TableName()
			createSQL := tableModel.CreateTableSQL()

			log.Printf("Creating table: %s", tableName)
			if _, err := db.Exec(createSQL); err != nil {
				return fmt.Errorf("failed to create table %s: %w", tableName, err)
			}
		}
	}

	// Run schema migrations
	if err := db.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("All tables created successfully!")
	return nil
}

// runMigrations handles schema updates for databases created before the
// current table definitions.
func (db *DB) runMigrations() error {
	migrations := []string{
		// One review per (user, book); older databases relied on the
		// application check alone
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_user_isbn ON reviews(user_id, isbn);`,

		// Reviews are always listed per book, newest first
		`CREATE INDEX IF NOT EXISTS idx_reviews_isbn ON reviews(isbn);`,

		// Add avatar column to users table if it doesn't exist
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS avatar TEXT NOT NULL DEFAULT '';`,

		// Title ordering on every search result page
		`CREATE INDEX IF NOT EXISTS idx_books_title ON books(title);`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			log.Printf("Warning: Migration %d failed: %v", i+1, err)
			// Continue with other migrations even if one fails
		}
	}

	return nil
}

// CountBooks reports the catalog size, used at startup to flag an
// unseeded books table.
func (db *DB) CountBooks() (int, error) {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
