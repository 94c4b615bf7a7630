package main

import (
	"fmt"
	"strconv"
	"strings"

	"soundscape-server/internal/analysis"

	"github.com/spf13/cobra"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var genre string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Compose the soundscape of a page of text (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine()
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			result := engine.Compose(analysis.Input{Text: text, Genre: genre})
			if result.Err != nil {
				return fmt.Errorf("analysis failed: %w", result.Err)
			}
			if asJSON {
				return writeJSON(cmd, result)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSoundscape(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&genre, "genre", "", "Book genre (fantasy, horror, sci-fi, ...)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func renderSoundscape(result analysis.SoundscapeResult) string {
	scene := result.Scene
	genre := scene.Genre
	if genre == "" {
		genre = "-"
	}

	var b strings.Builder
	b.WriteString(renderTable(
		[]string{"Field", "Value"},
		[][]string{
			{"Scene", string(scene.PrimaryScene)},
			{"Context", string(scene.SceneContext)},
			{"Mood", scene.Mood},
			{"Intensity", formatFloat(scene.Intensity)},
			{"Confidence", formatFloat(scene.Confidence)},
			{"Genre", genre},
			{"Primary audio", result.PrimaryAudio},
			{"Secondary audio", result.SecondaryAudio},
		},
		nil,
	))
	b.WriteString("\n")

	if len(result.TriggeredSounds) > 0 {
		b.WriteString(renderTriggers(result.TriggeredSounds))
		b.WriteString("\n")
	}
	for _, line := range scene.Reasoning {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	for _, line := range scene.GenreAdjustments {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func renderTriggers(triggers []analysis.TriggerMatch) string {
	rows := make([][]string, 0, len(triggers))
	for i, t := range triggers {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			t.Word,
			t.Group,
			t.SoundFile,
			strconv.Itoa(t.CharacterPosition),
			strconv.Itoa(t.WordIndex),
			formatFloat(t.TimingSeconds),
		})
	}
	return renderTable(
		[]string{"#", "Word", "Group", "Sound", "Position", "Word", "Time (s)"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
