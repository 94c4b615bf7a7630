package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"soundscape-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS books (
    id    TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    genre TEXT
);
CREATE TABLE IF NOT EXISTS pages (
    book_id TEXT    NOT NULL REFERENCES books (id) ON DELETE CASCADE,
    chapter INTEGER NOT NULL,
    page    INTEGER NOT NULL,
    content TEXT    NOT NULL,
    PRIMARY KEY (book_id, chapter, page)
);`

// Compile-time check to ensure implementation satisfies the interface.
var _ ContentProvider = (*SQLiteContentRepository)(nil)

// SQLiteContentRepository - офлайн-провайдер контента для CLI поверх файла SQLite.
type SQLiteContentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLiteContentRepository открывает (и при необходимости создает) базу страниц.
// path ":memory:" дает базу в памяти.
func OpenSQLiteContentRepository(ctx context.Context, path string, logger *zap.Logger) (*SQLiteContentRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть SQLite %s: %w", path, err)
	}
	// Одно соединение: база в памяти живет, пока открыто соединение
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать схему SQLite: %w", err)
	}
	return &SQLiteContentRepository{db: db, logger: logger.Named("SQLiteContentRepo")}, nil
}

// Close закрывает базу.
func (r *SQLiteContentRepository) Close() error {
	return r.db.Close()
}

// SaveBook создает или обновляет книгу.
func (r *SQLiteContentRepository) SaveBook(ctx context.Context, book models.Book) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO books (id, title, genre) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET title = excluded.title, genre = excluded.genre`,
		book.ID.String(), book.Title, book.Genre)
	if err != nil {
		return fmt.Errorf("ошибка сохранения книги %s: %w", book.ID, err)
	}
	return nil
}

// SavePage создает или обновляет страницу.
func (r *SQLiteContentRepository) SavePage(ctx context.Context, ref models.PageRef, content string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pages (book_id, chapter, page, content) VALUES (?, ?, ?, ?)
		 ON CONFLICT (book_id, chapter, page) DO UPDATE SET content = excluded.content`,
		ref.BookID.String(), ref.Chapter, ref.Page, content)
	if err != nil {
		return fmt.Errorf("ошибка сохранения страницы %d/%d: %w", ref.Chapter, ref.Page, err)
	}
	return nil
}

func (r *SQLiteContentRepository) GetPageText(ctx context.Context, bookID uuid.UUID, chapter, page int) (string, error) {
	var content string
	err := r.db.QueryRowContext(ctx,
		`SELECT content FROM pages WHERE book_id = ? AND chapter = ? AND page = ?`,
		bookID.String(), chapter, page).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", models.ErrPageNotFound
		}
		r.logger.Error("Failed to get page text", zap.String("bookID", bookID.String()), zap.Error(err))
		return "", fmt.Errorf("ошибка получения текста страницы: %w", err)
	}
	return content, nil
}

func (r *SQLiteContentRepository) GetBookGenre(ctx context.Context, bookID uuid.UUID) (string, error) {
	var genre sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT genre FROM books WHERE id = ?`, bookID.String()).Scan(&genre)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", models.ErrBookNotFound
		}
		r.logger.Error("Failed to get book genre", zap.String("bookID", bookID.String()), zap.Error(err))
		return "", fmt.Errorf("ошибка получения жанра книги %s: %w", bookID, err)
	}
	return genre.String, nil
}

func (r *SQLiteContentRepository) ListPages(ctx context.Context, bookID uuid.UUID) ([]models.PageRef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT chapter, page FROM pages WHERE book_id = ? ORDER BY chapter, page`, bookID.String())
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка страниц книги %s: %w", bookID, err)
	}
	defer rows.Close()

	pages := []models.PageRef{}
	for rows.Next() {
		ref := models.PageRef{BookID: bookID}
		if err := rows.Scan(&ref.Chapter, &ref.Page); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки страницы: %w", err)
		}
		pages = append(pages, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода страниц книги %s: %w", bookID, err)
	}
	return pages, nil
}
