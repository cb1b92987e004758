package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paw-chain/stableswap/app"
)

// GenesisCmd groups the genesis file commands.
func GenesisCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Import, export and validate genesis files",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "export [file]",
			Short: "Write every pool and the default params to a genesis file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, "genesis_export", func(ctx context.Context) (any, error) {
					gs, err := e.app.Keeper.ExportGenesis(ctx)
					if err != nil {
						return nil, err
					}
					return nil, app.WriteGenesisFile(args[0], gs)
				})
			},
		},
		&cobra.Command{
			Use:   "import [file]",
			Short: "Load a genesis file into an empty store",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, "genesis_import", func(ctx context.Context) (any, error) {
					return nil, e.app.InitFromGenesis(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "validate [file]",
			Short: "Validate a genesis file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := app.ReadGenesisFile(args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "File at %s is a valid genesis file\n", args[0])
				return err
			},
		},
		&cobra.Command{
			Use:   "default [file]",
			Short: "Write the default genesis with the configured params",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.WriteGenesisFile(args[0], e.app.DefaultGenesis())
			},
		},
	)
	return cmd
}

// InvariantsCmd checks every pool invariant.
func InvariantsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "invariants",
		Short: "Check every pool invariant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, "invariants", func(ctx context.Context) (any, error) {
				if err := e.app.Keeper.Invariants(ctx); err != nil {
					return nil, err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "all invariants hold")
				return nil, err
			})
		},
	}
}
