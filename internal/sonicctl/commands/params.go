package commands

import (
	"encoding/json"
	"fmt"

	"commitsonic/internal/lang"
	"commitsonic/internal/models"
	"commitsonic/internal/music"

	"github.com/spf13/cobra"
)

func NewParamsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "params [commit.json|-]",
		Short: "Compute the musical parameters of a commit",
		Long: `Reads a commit as JSON (the shape the API returns) and prints its musical
parameters. When primaryLanguage is empty it is taken from the languages
histogram.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var commit models.Commit
			if err := json.Unmarshal(data, &commit); err != nil {
				return fmt.Errorf("invalid commit JSON: %w", err)
			}
			if commit.PrimaryLanguage == "" {
				commit.PrimaryLanguage = lang.Primary(commit.Languages)
			}
			if commit.CIStatus == "" {
				commit.CIStatus = models.CIStatusUnknown
			}

			p := music.CommitToMusicalParams(commit)
			text := fmt.Sprintf("%s %s (octave %d, %s) dur=%.2f vel=%.2f reverb=%.1f delay=%.1f",
				p.Instrument, p.Note, p.Octave, p.Scale, p.Duration, p.Velocity, p.Effects.Reverb, p.Effects.Delay)
			return newPrinter(rootOpts, cmd.OutOrStdout()).print(p, text)
		},
	}
}
