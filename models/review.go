package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	ISBN       string    `json:"isbn" db:"isbn"`
	Rating     int       `json:"rating" db:"rating"`
	ReviewText string    `json:"review_text" db:"review_text"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

func (Review) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS reviews (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id),
		isbn TEXT NOT NULL REFERENCES books(isbn),
		rating SMALLINT CHECK (rating >= 1 AND rating <= 5),
		review_text TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		UNIQUE (user_id, isbn)
	);`
}
