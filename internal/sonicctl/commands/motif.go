package commands

import (
	"fmt"

	"commitsonic/internal/music"

	"github.com/spf13/cobra"
)

func NewMotifCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "motif <login>",
		Short: "Print the author motif derived from a GitHub login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			motif := music.GenerateAuthorMotif(args[0])

			text := fmt.Sprintf("login:  %s\npan:    %.3f\nrhythm: %v\ncolor:  %s",
				motif.Login, motif.PanPosition, motif.RhythmPattern, motif.Color)
			return newPrinter(rootOpts, cmd.OutOrStdout()).print(motif, text)
		},
	}
}
