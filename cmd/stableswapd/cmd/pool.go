package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

const (
	flagDecimals      = "decimals"
	flagAmplification = "amplification"
	flagReason        = "reason"
)

// PoolCmd groups the pool administration commands.
func PoolCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Create, inspect and administer pools",
	}
	cmd.AddCommand(
		poolCreateCmd(e),
		poolCreateFeederCmd(e),
		poolShowCmd(e),
		poolListCmd(e),
		poolHaltCmd(e),
		poolResumeCmd(e),
		poolSetStatusCmd(e),
		poolSetFailedCmd(e),
	)
	return cmd
}

func poolCreateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty pool",
		Long: `Create an empty pool over assets with the given native decimals.

Example:
  stableswapd pool create --decimals 18,6,18 --amplification 200
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, "pool_create", func(ctx context.Context) (any, error) {
				raw, _ := cmd.Flags().GetString(flagDecimals)
				var assets []types.Asset
				for _, d := range strings.Split(raw, ",") {
					dec, err := strconv.ParseUint(strings.TrimSpace(d), 10, 32)
					if err != nil {
						return nil, fmt.Errorf("invalid decimals %q: %w", d, err)
					}
					asset, err := types.NewAsset(uint32(dec), sdkmath.ZeroUint())
					if err != nil {
						return nil, err
					}
					assets = append(assets, asset)
				}

				var params *types.Params
				if cmd.Flags().Changed(flagAmplification) {
					p := e.app.Config().Params
					p.Amplification, _ = cmd.Flags().GetUint64(flagAmplification)
					params = &p
				}
				return e.app.Keeper.CreatePool(ctx, params, assets)
			})
		},
	}
	cmd.Flags().String(flagDecimals, "18,18,18", "comma separated native decimals of every asset")
	cmd.Flags().Uint64(flagAmplification, 0, "amplification coefficient (defaults to the configured params)")
	return cmd
}

func poolCreateFeederCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-feeder [main-pool-id]",
		Short: "Create an empty feeder pool backed by a main pool",
		Long: `Create an empty feeder pool pairing the shares of a main pool (the mAsset, asset 0)
with an fAsset of the given native decimals (asset 1).

Example:
  stableswapd pool create-feeder 1 --decimals 6
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "pool_create_feeder", func(ctx context.Context) (any, error) {
				mainID, err := parsePoolID(args[0])
				if err != nil {
					return nil, err
				}
				dec, _ := cmd.Flags().GetUint32(flagDecimals)
				fAsset, err := types.NewAsset(dec, sdkmath.ZeroUint())
				if err != nil {
					return nil, err
				}

				var params *types.Params
				if cmd.Flags().Changed(flagAmplification) {
					p := e.app.Config().Params
					p.Amplification, _ = cmd.Flags().GetUint64(flagAmplification)
					params = &p
				}
				return e.app.Keeper.CreateFeederPool(ctx, mainID, params, fAsset)
			})
		},
	}
	cmd.Flags().Uint32(flagDecimals, types.CanonicalDecimals, "native decimals of the fAsset")
	cmd.Flags().Uint64(flagAmplification, 0, "amplification coefficient (defaults to the configured params)")
	return cmd
}

func poolShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show [pool-id]",
		Short: "Show a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "pool_show", func(ctx context.Context) (any, error) {
				id, err := parsePoolID(args[0])
				if err != nil {
					return nil, err
				}
				return e.app.Keeper.GetPool(ctx, id)
			})
		},
	}
}

func poolListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, "pool_list", func(ctx context.Context) (any, error) {
				pools, err := e.app.Keeper.GetAllPools(ctx)
				if err != nil {
					return nil, err
				}
				if pools == nil {
					pools = []types.PoolState{}
				}
				return pools, nil
			})
		},
	}
}

func poolHaltCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "halt [pool-id]",
		Short: "Halt every operation on a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "pool_halt", func(ctx context.Context) (any, error) {
				id, err := parsePoolID(args[0])
				if err != nil {
					return nil, err
				}
				reason, _ := cmd.Flags().GetString(flagReason)
				return nil, e.app.Keeper.HaltPool(ctx, id, reason)
			})
		},
	}
	cmd.Flags().String(flagReason, "halted by operator", "reason recorded on the pool")
	return cmd
}

func poolResumeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "resume [pool-id]",
		Short: "Resume a halted pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "pool_resume", func(ctx context.Context) (any, error) {
				id, err := parsePoolID(args[0])
				if err != nil {
					return nil, err
				}
				return nil, e.app.Keeper.ResumePool(ctx, id)
			})
		},
	}
}

func poolSetStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status [pool-id] [asset] [status]",
		Short: "Set the health of a basket asset",
		Long:  "Set the health of a basket asset. status is one of normal, broken_below_peg, broken_above_peg, blacklisted, liquidating, liquidated, failed.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "pool_set_status", func(ctx context.Context) (any, error) {
				id, err := parsePoolID(args[0])
				if err != nil {
					return nil, err
				}
				idx, err := parseIndex(args[1])
				if err != nil {
					return nil, err
				}
				status, err := types.ParseAssetStatus(args[2])
				if err != nil {
					return nil, err
				}
				return nil, e.app.Keeper.SetAssetStatus(ctx, id, idx, status)
			})
		},
	}
}

func poolSetFailedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "set-failed [pool-id] [true|false]",
		Short: "Mark the basket of a pool as failed or recovered",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "pool_set_failed", func(ctx context.Context) (any, error) {
				id, err := parsePoolID(args[0])
				if err != nil {
					return nil, err
				}
				failed, err := strconv.ParseBool(args[1])
				if err != nil {
					return nil, fmt.Errorf("invalid flag value %q: %w", args[1], err)
				}
				return nil, e.app.Keeper.SetBasketFailed(ctx, id, failed)
			})
		},
	}
}
