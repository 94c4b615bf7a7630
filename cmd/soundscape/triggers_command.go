package main

import (
	"fmt"

	"soundscape-server/internal/analysis"

	"github.com/spf13/cobra"
)

type triggersOutput struct {
	Triggers []analysis.TriggerMatch `json:"triggers"`
}

func newTriggersCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "triggers [file]",
		Short: "List trigger words with positions and timings",
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
			if err := engine.CheckText(text); err != nil {
				return err
			}

			triggers := engine.FindTriggers(text)
			if asJSON {
				return writeJSON(cmd, triggersOutput{Triggers: triggers})
			}
			if len(triggers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No trigger words found")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTriggers(triggers))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print triggers as JSON")
	return cmd
}
