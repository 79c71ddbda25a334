package commands

import (
	"errors"

	"commitsonic/internal/githubhooks"

	"github.com/spf13/cobra"
)

type signature struct {
	Header    string `json:"header" yaml:"header"`
	Signature string `json:"signature" yaml:"signature"`
}

func NewSignCommand(rootOpts *RootOptions) *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "sign [payload.json|-]",
		Short: "Print the X-Hub-Signature-256 value for a webhook payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret is required")
			}

			body, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			sig := githubhooks.ComputeSignature(secret, body)
			return newPrinter(rootOpts, cmd.OutOrStdout()).print(
				signature{Header: "X-Hub-Signature-256", Signature: sig},
				sig,
			)
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "repository webhook secret")

	return cmd
}
