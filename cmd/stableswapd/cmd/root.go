package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/paw-chain/stableswap/app"
	"github.com/paw-chain/stableswap/app/telemetry"
	"github.com/paw-chain/stableswap/x/stableswap/keeper"
)

const (
	flagConfig   = "config"
	flagHome     = "home"
	flagLogLevel = "log-level"
	flagBackend  = "db-backend"
)

// env carries the app opened for the running command.
type env struct {
	app *app.App
}

// NewRootCmd creates the root command for stableswapd.
func NewRootCmd() *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:           "stableswapd",
		Short:         "StableSwap pool daemon",
		Long:          `stableswapd prices and settles mints, swaps and redemptions against StableSwap pools kept in a local database.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := app.NewLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			e.app = a
			return nil
		},
	}

	rootCmd.PersistentFlags().String(flagConfig, "", "path to a TOML, YAML or JSON config file")
	rootCmd.PersistentFlags().String(flagHome, app.DefaultNodeHome, "directory for config and data")
	rootCmd.PersistentFlags().String(flagLogLevel, "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String(flagBackend, "", "database backend (goleveldb, memdb)")

	rootCmd.AddCommand(
		PoolCmd(e),
		MintCmd(e),
		MintMultiCmd(e),
		SwapCmd(e),
		FeederSwapCmd(e),
		RedeemCmd(e),
		RedeemExactCmd(e),
		RedeemProportionalCmd(e),
		GenesisCmd(e),
		InvariantsCmd(e),
		ServeCmd(e),
	)
	closeAfterRun(rootCmd, e)
	return rootCmd
}

// closeAfterRun closes the app once a command body returns. PersistentPostRunE is skipped
// when RunE fails, which would leave the database locked.
func closeAfterRun(cmd *cobra.Command, e *env) {
	for _, sub := range cmd.Commands() {
		closeAfterRun(sub, e)
	}
	if cmd.RunE == nil {
		return
	}
	runE := cmd.RunE
	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if closeErr := e.close(); err == nil {
				err = closeErr
			}
		}()
		return runE(cmd, args)
	}
}

func (e *env) close() error {
	if e.app == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := e.app.Close(ctx)
	e.app = nil
	return err
}

func loadConfig(cmd *cobra.Command) (app.Config, error) {
	path, _ := cmd.Flags().GetString(flagConfig)
	cfg, err := app.LoadConfig(path)
	if err != nil {
		return app.Config{}, err
	}
	if cmd.Flags().Changed(flagHome) {
		cfg.Home, _ = cmd.Flags().GetString(flagHome)
	}
	if lvl, _ := cmd.Flags().GetString(flagLogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	if backend, _ := cmd.Flags().GetString(flagBackend); backend != "" {
		cfg.DBBackend = backend
	}
	return cfg, cfg.Validate()
}

// run wraps a command body in a span.
func run(cmd *cobra.Command, name string, fn func(ctx context.Context) (any, error)) error {
	ctx, span := telemetry.StartCommandSpan(cmd.Context(), name)
	defer span.End()

	res, err := fn(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if res == nil {
		return nil
	}
	return printJSON(cmd, res)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parsePoolID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pool id %q: %w", s, err)
	}
	return id, nil
}

func parseIndex(s string) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("invalid asset index %q", s)
	}
	return idx, nil
}

// parseFeederAsset reads a feeder pool asset index, or main:<index> for a main pool asset.
func parseFeederAsset(s string) (keeper.FeederAsset, error) {
	if rest, ok := strings.CutPrefix(s, "main:"); ok {
		idx, err := parseIndex(rest)
		return keeper.FeederAsset{Index: idx, MainPool: true}, err
	}
	idx, err := parseIndex(s)
	return keeper.FeederAsset{Index: idx}, err
}

func parseIndices(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		idx, err := parseIndex(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

func parseAmount(s string) (sdkmath.Uint, error) {
	u, err := sdkmath.ParseUint(strings.TrimSpace(s))
	if err != nil {
		return sdkmath.Uint{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return u, nil
}

func parseAmounts(s string) ([]sdkmath.Uint, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]sdkmath.Uint, len(parts))
	for i, p := range parts {
		u, err := parseAmount(p)
		if err != nil {
			return nil, err
		}
		out[i] = u
	}
	return out, nil
}

// amountFlag reads an optional amount flag; unset flags yield a nil Uint.
func amountFlag(cmd *cobra.Command, name string) (sdkmath.Uint, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return sdkmath.Uint{}, nil
	}
	return parseAmount(s)
}
