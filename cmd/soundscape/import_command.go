package main

import (
	"errors"
	"fmt"

	"soundscape-server/internal/models"
	"soundscape-server/internal/repository"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var dbPath, bookFlag, title, genre string
	var chapter, page int

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Store a page of text in a SQLite content database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return errors.New("--db is required")
			}
			if chapter < 0 || page < 0 {
				return errors.New("--chapter and --page must not be negative")
			}
			bookID := uuid.New()
			if bookFlag != "" {
				parsed, err := uuid.Parse(bookFlag)
				if err != nil {
					return fmt.Errorf("invalid --book %q: %w", bookFlag, err)
				}
				bookID = parsed
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			repo, err := repository.OpenSQLiteContentRepository(cmd.Context(), dbPath, logger)
			if err != nil {
				return err
			}
			defer repo.Close()

			book := models.Book{ID: bookID, Title: title}
			if genre != "" {
				book.Genre = &genre
			}
			if err := repo.SaveBook(cmd.Context(), book); err != nil {
				return err
			}
			if err := repo.SavePage(cmd.Context(), models.PageRef{BookID: bookID, Chapter: chapter, Page: page}, text); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), bookID.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite content database (created when missing)")
	cmd.Flags().StringVar(&bookFlag, "book", "", "Book ID (UUID); a new ID is generated when empty")
	cmd.Flags().StringVar(&title, "title", "untitled", "Book title")
	cmd.Flags().StringVar(&genre, "genre", "", "Book genre")
	cmd.Flags().IntVar(&chapter, "chapter", 1, "Chapter number")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	return cmd
}
