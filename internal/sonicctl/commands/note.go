package commands

import (
	"fmt"
	"strconv"

	"commitsonic/internal/models"
	"commitsonic/internal/music"

	"github.com/spf13/cobra"
)

type noteResult struct {
	Root   string       `json:"root" yaml:"root"`
	Scale  models.Scale `json:"scale" yaml:"scale"`
	Index  int          `json:"index" yaml:"index"`
	Octave int          `json:"octave" yaml:"octave"`
	Note   string       `json:"note" yaml:"note"`
}

func NewNoteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "note <root> <major|minor|dorian> <index> <octave>",
		Short: "Resolve a scale degree to a note name",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("index must be an integer: %w", err)
			}
			octave, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("octave must be an integer: %w", err)
			}

			scale := models.Scale(args[1])
			note, err := music.GetNoteName(args[0], scale, index, octave)
			if err != nil {
				return err
			}

			return newPrinter(rootOpts, cmd.OutOrStdout()).print(noteResult{
				Root:   args[0],
				Scale:  scale,
				Index:  index,
				Octave: octave,
				Note:   note,
			}, note)
		},
	}
}
