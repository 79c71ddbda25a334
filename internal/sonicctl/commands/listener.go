package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"commitsonic/internal/env"
	"commitsonic/internal/listeners"
	"commitsonic/internal/store"

	"github.com/spf13/cobra"
)

// openStore connects the store configured in the environment.
var openStore = func(ctx context.Context, deployment, envRoot string) (store.Store, error) {
	env.Init(deployment, envRoot, "")
	return store.Open(ctx, env.STORE_DRIVER)
}

type listenerResult struct {
	Username string `json:"username" yaml:"username"`
	Created  bool   `json:"created" yaml:"created"`
}

func NewListenerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listener",
		Short: "Manage listener accounts",
	}

	cmd.AddCommand(newListenerAddCommand(rootOpts))

	return cmd
}

func newListenerAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		deployment string
		envRoot    string
	)

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a listener account; the password is read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && password == "" {
				return errors.New("password must be given on stdin")
			}
			password = strings.TrimRight(password, "\r\n")

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			st, err := openStore(ctx, deployment, envRoot)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close(ctx)

			listener, err := listeners.Create(ctx, st, args[0], password, 0)
			if errors.Is(err, store.ErrDuplicate) {
				return fmt.Errorf("listener %q already exists", args[0])
			}
			if err != nil {
				return err
			}

			return newPrinter(rootOpts, cmd.OutOrStdout()).print(
				listenerResult{Username: listener.Username, Created: true},
				"created listener "+listener.Username,
			)
		},
	}

	cmd.Flags().StringVar(&deployment, "deployment", "dev", "deployment profile used to load the environment")
	cmd.Flags().StringVar(&envRoot, "env-root", "", "directory containing environment files")

	return cmd
}
