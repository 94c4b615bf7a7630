package repository

import (
	"context"

	"soundscape-server/internal/models"

	"github.com/google/uuid"
)

// ContentProvider отдает текст страниц и жанр книги.
type ContentProvider interface {
	// GetPageText возвращает текст страницы или models.ErrPageNotFound.
	GetPageText(ctx context.Context, bookID uuid.UUID, chapter, page int) (string, error)
	// GetBookGenre возвращает жанр книги (пустая строка, если жанр не задан) или models.ErrBookNotFound.
	GetBookGenre(ctx context.Context, bookID uuid.UUID) (string, error)
	// ListPages возвращает адреса всех страниц книги по порядку глав и страниц.
	ListPages(ctx context.Context, bookID uuid.UUID) ([]models.PageRef, error)
}
