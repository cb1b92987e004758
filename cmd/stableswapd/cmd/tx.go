package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

const (
	flagMinOutput  = "min-output"
	flagMinOutputs = "min-outputs"
	flagMaxShares  = "max-shares"
)

// MintCmd deposits a single asset.
func MintCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint [pool-id] [asset] [amount]",
		Short: "Deposit one asset and mint pool shares",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "mint", func(ctx context.Context) (any, error) {
				id, err := parsePoolID(args[0])
				if err != nil {
					return nil, err
				}
				idx, err := parseIndex(args[1])
				if err != nil {
					return nil, err
				}
				amount, err := parseAmount(args[2])
				if err != nil {
					return nil, err
				}
				minOut, err := amountFlag(cmd, flagMinOutput)
				if err != nil {
					return nil, err
				}
				return e.app.Keeper.Mint(ctx, id, idx, amount, minOut)
			})
		},
	}
	cmd.Flags().String(flagMinOutput, "", "minimum shares to mint")
	return cmd
}

// MintMultiCmd deposits several assets.
func MintMultiCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint-multi [pool-id] [assets] [amounts]",
		Short: "Deposit several assets and mint pool shares",
		Long: `Deposit several assets and mint pool shares.

Example:
  stableswapd mint-multi 1 0,1,2 100000000000000000000,100000000,100000000000000000000
`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "mint_multi", func(ctx context.Context) (any, error) {
				id, err := parsePoolID(args[0])
				if err != nil {
					return nil, err
				}
				indices, err := parseIndices(args[1])
				if err != nil {
					return nil, err
				}
				amounts, err := parseAmounts(args[2])
				if err != nil {
					return nil, err
				}
				minOut, err := amountFlag(cmd, flagMinOutput)
				if err != nil {
					return nil, err
				}
				return e.app.Keeper.MintMulti(ctx, id, indices, amounts, minOut)
			})
		},
	}
	cmd.Flags().String(flagMinOutput, "", "minimum shares to mint")
	return cmd
}

// SwapCmd swaps one asset for another.
func SwapCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap [pool-id] [in] [out] [amount]",
		Short: "Swap an exact input of one asset for another",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "swap", func(ctx context.Context) (any, error) {
				id, err := parsePoolID(args[0])
				if err != nil {
					return nil, err
				}
				in, err := parseIndex(args[1])
				if err != nil {
					return nil, err
				}
				out, err := parseIndex(args[2])
				if err != nil {
					return nil, err
				}
				amount, err := parseAmount(args[3])
				if err != nil {
					return nil, err
				}
				minOut, err := amountFlag(cmd, flagMinOutput)
				if err != nil {
					return nil, err
				}
				return e.app.Keeper.Swap(ctx, id, in, out, amount, minOut)
			})
		},
	}
	cmd.Flags().String(flagMinOutput, "", "minimum output in native units")
	return cmd
}

// FeederSwapCmd swaps through a feeder pool.
func FeederSwapCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feeder-swap [feeder-id] [in] [out] [amount]",
		Short: "Swap through a feeder pool and its main pool",
		Long: `Swap an exact input through a feeder pool. Assets of the feeder pool are given by
index, assets of its main pool as main:<index>.

Example:
  stableswapd feeder-swap 2 main:0 1 1000000000000000000
`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "feeder_swap", func(ctx context.Context) (any, error) {
				id, err := parsePoolID(args[0])
				if err != nil {
					return nil, err
				}
				in, err := parseFeederAsset(args[1])
				if err != nil {
					return nil, err
				}
				out, err := parseFeederAsset(args[2])
				if err != nil {
					return nil, err
				}
				amount, err := parseAmount(args[3])
				if err != nil {
					return nil, err
				}
				minOut, err := amountFlag(cmd, flagMinOutput)
				if err != nil {
					return nil, err
				}
				return e.app.Keeper.FeederSwap(ctx, id, in, out, amount, minOut)
			})
		},
	}
	cmd.Flags().String(flagMinOutput, "", "minimum output in native units")
	return cmd
}

// RedeemCmd burns shares for one asset.
func RedeemCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redeem [pool-id] [asset] [shares]",
		Short: "Burn shares for a single asset",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "redeem", func(ctx context.Context) (any, error) {
				id, err := parsePoolID(args[0])
				if err != nil {
					return nil, err
				}
				idx, err := parseIndex(args[1])
				if err != nil {
					return nil, err
				}
				shares, err := parseAmount(args[2])
				if err != nil {
					return nil, err
				}
				minOut, err := amountFlag(cmd, flagMinOutput)
				if err != nil {
					return nil, err
				}
				return e.app.Keeper.Redeem(ctx, id, idx, shares, minOut)
			})
		},
	}
	cmd.Flags().String(flagMinOutput, "", "minimum output in native units")
	return cmd
}

// RedeemExactCmd withdraws exact asset quantities.
func RedeemExactCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redeem-exact [pool-id] [assets] [amounts]",
		Short: "Withdraw exact quantities of several assets",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "redeem_exact", func(ctx context.Context) (any, error) {
				id, err := parsePoolID(args[0])
				if err != nil {
					return nil, err
				}
				indices, err := parseIndices(args[1])
				if err != nil {
					return nil, err
				}
				amounts, err := parseAmounts(args[2])
				if err != nil {
					return nil, err
				}
				maxShares, err := amountFlag(cmd, flagMaxShares)
				if err != nil {
					return nil, err
				}
				return e.app.Keeper.RedeemExact(ctx, id, indices, amounts, maxShares)
			})
		},
	}
	cmd.Flags().String(flagMaxShares, "", "maximum shares to burn")
	return cmd
}

// RedeemProportionalCmd burns shares for a slice of every asset.
func RedeemProportionalCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redeem-proportional [pool-id] [shares]",
		Short: "Burn shares for a pro rata slice of every asset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "redeem_proportional", func(ctx context.Context) (any, error) {
				id, err := parsePoolID(args[0])
				if err != nil {
					return nil, err
				}
				shares, err := parseAmount(args[1])
				if err != nil {
					return nil, err
				}
				raw, _ := cmd.Flags().GetString(flagMinOutputs)
				minOuts, err := parseAmounts(raw)
				if err != nil {
					return nil, err
				}
				return e.app.Keeper.RedeemProportionally(ctx, id, shares, minOuts)
			})
		},
	}
	cmd.Flags().String(flagMinOutputs, "", "comma separated minimum output of every asset")
	return cmd
}
