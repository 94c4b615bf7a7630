package main

import (
	"errors"
	"fmt"
	"strconv"

	"soundscape-server/internal/messaging"
	"soundscape-server/internal/repository"
	"soundscape-server/internal/service"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var dbPath, bookFlag, genre string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyse every page of a book stored in a SQLite content database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return errors.New("--db is required")
			}
			bookID, err := uuid.Parse(bookFlag)
			if err != nil {
				return fmt.Errorf("invalid --book %q: %w", bookFlag, err)
			}
			engine, err := ctx.ensureEngine()
			if err != nil {
				return err
			}

			repo, err := repository.OpenSQLiteContentRepository(cmd.Context(), dbPath, ctx.logger)
			if err != nil {
				return err
			}
			defer repo.Close()

			// Жанр книги определяется один раз на весь пакет
			if !cmd.Flags().Changed("genre") {
				if genre, err = repo.GetBookGenre(cmd.Context(), bookID); err != nil {
					return fmt.Errorf("book %s: %w", bookID, err)
				}
			}
			pages, err := repo.ListPages(cmd.Context(), bookID)
			if err != nil {
				return err
			}
			if len(pages) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Book %s has no pages\n", bookID)
				return nil
			}

			svc := service.NewSoundscapeService(engine, repo, nil, ctx.logger)

			var bar *progressbar.ProgressBar
			if !asJSON && isTerminal(cmd.ErrOrStderr()) {
				bar = progressbar.NewOptions(len(pages),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("Analyzing pages"),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionSetItsString("pages"),
				)
			}
			jsonLines := asJSON || !isTerminal(cmd.OutOrStdout())

			results := make([]messaging.AnalysisResultPayload, 0, len(pages))
			failed := 0
			for _, ref := range pages {
				chapter, page := ref.Chapter, ref.Page
				out := messaging.AnalysisResultPayload{
					TaskID:  fmt.Sprintf("%s/%d/%d", bookID, chapter, page),
					BookID:  &bookID,
					Chapter: &chapter,
					Page:    &page,
				}
				res, err := svc.GenerateSoundscape(cmd.Context(), service.SoundscapeRequest{
					BookID: &bookID, Chapter: &chapter, Page: &page, Genre: &genre,
				})
				switch {
				case err != nil:
					out.Status = messaging.ResultStatus(err)
					out.Error = err.Error()
				case res.Err != nil:
					out.Status = messaging.ResultStatus(res.Err)
					out.Error = res.Error
					out.Result = &res
				default:
					out.Status = messaging.ResultStatusSuccess
					out.Result = &res
				}
				if out.Status != messaging.ResultStatusSuccess {
					failed++
				}

				if jsonLines {
					if err := writeJSONLine(cmd, out); err != nil {
						return err
					}
				} else {
					results = append(results, out)
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
			if bar != nil {
				_ = bar.Finish()
				fmt.Fprintln(cmd.ErrOrStderr())
			}

			if !jsonLines {
				fmt.Fprintln(cmd.OutOrStdout(), renderBatch(results))
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d pages analysed, %d failed\n", len(pages), failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite content database")
	cmd.Flags().StringVar(&bookFlag, "book", "", "Book ID (UUID)")
	cmd.Flags().StringVar(&genre, "genre", "", "Override the book genre")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON result per line")
	return cmd
}

func renderBatch(results []messaging.AnalysisResultPayload) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		row := []string{strconv.Itoa(*r.Chapter), strconv.Itoa(*r.Page), r.Status, "", "", "", "", "", r.Error}
		if r.Result != nil {
			row[3] = string(r.Result.Scene.PrimaryScene)
			row[4] = r.Result.Scene.Mood
			row[5] = r.Result.PrimaryAudio
			row[6] = r.Result.SecondaryAudio
			row[7] = strconv.Itoa(len(r.Result.TriggeredSounds))
		}
		rows = append(rows, row)
	}
	return renderTable(
		[]string{"Chapter", "Page", "Status", "Scene", "Mood", "Primary", "Secondary", "Triggers", "Error"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}
