package repository

import (
	"context"
	"errors"
	"fmt"

	"soundscape-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// DBTX - общий интерфейс pgxpool.Pool и pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	getPageTextQuery = `
SELECT content
FROM pages
WHERE book_id = $1 AND chapter = $2 AND page = $3`

	getBookGenreQuery = `SELECT id, title, genre FROM books WHERE id = $1`

	listPagesQuery = `
SELECT book_id, chapter, page
FROM pages
WHERE book_id = $1
ORDER BY chapter, page`
)

// Compile-time check to ensure implementation satisfies the interface.
var _ ContentProvider = (*pgContentRepository)(nil)

type pgContentRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgContentRepository создает провайдер контента поверх PostgreSQL.
func NewPgContentRepository(db DBTX, logger *zap.Logger) ContentProvider {
	return &pgContentRepository{
		db:     db,
		logger: logger.Named("PgContentRepo"),
	}
}

func (r *pgContentRepository) GetPageText(ctx context.Context, bookID uuid.UUID, chapter, page int) (string, error) {
	logFields := []zap.Field{
		zap.String("bookID", bookID.String()),
		zap.Int("chapter", chapter),
		zap.Int("page", page),
	}

	var content string
	err := r.db.QueryRow(ctx, getPageTextQuery, bookID, chapter, page).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Page not found", logFields...)
			return "", models.ErrPageNotFound
		}
		r.logger.Error("Failed to get page text", append(logFields, zap.Error(err))...)
		return "", fmt.Errorf("ошибка получения текста страницы: %w", err)
	}
	return content, nil
}

func (r *pgContentRepository) GetBookGenre(ctx context.Context, bookID uuid.UUID) (string, error) {
	var book models.Book
	err := pgxscan.Get(ctx, r.db, &book, getBookGenreQuery, bookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Book not found", zap.String("bookID", bookID.String()))
			return "", models.ErrBookNotFound
		}
		r.logger.Error("Failed to get book genre", zap.String("bookID", bookID.String()), zap.Error(err))
		return "", fmt.Errorf("ошибка получения жанра книги %s: %w", bookID, err)
	}
	if book.Genre == nil {
		return "", nil
	}
	return *book.Genre, nil
}

func (r *pgContentRepository) ListPages(ctx context.Context, bookID uuid.UUID) ([]models.PageRef, error) {
	var pages []models.PageRef
	if err := pgxscan.Select(ctx, r.db, &pages, listPagesQuery, bookID); err != nil {
		r.logger.Error("Failed to list pages", zap.String("bookID", bookID.String()), zap.Error(err))
		return nil, fmt.Errorf("ошибка получения списка страниц книги %s: %w", bookID, err)
	}
	if pages == nil {
		pages = []models.PageRef{}
	}
	return pages, nil
}
