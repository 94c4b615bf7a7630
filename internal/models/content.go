package models

import "github.com/google/uuid"

// Book - книга, страницы которой анализируются.
type Book struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Title string    `db:"title" json:"title"`
	Genre *string   `db:"genre" json:"genre,omitempty"`
}

// PageRef - адрес страницы внутри книги.
type PageRef struct {
	BookID  uuid.UUID `db:"book_id" json:"book_id"`
	Chapter int       `db:"chapter" json:"chapter"`
	Page    int       `db:"page" json:"page"`
}
