package keeper

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// FeederAsset addresses an asset reachable from a feeder pool: one of its own assets, or a
// basket asset of its main pool when MainPool is set.
type FeederAsset struct {
	Index    int
	MainPool bool
}

// FeederSwapResult describes a swap through a feeder pool.
type FeederSwapResult struct {
	Output sdkmath.Uint
	// Masset is the quantity of main pool shares minted into or burned out of the feeder
	// pool. It is zero for a swap inside the feeder pool.
	Masset sdkmath.Uint
	// Fee is the feeder pool swap fee.
	Fee FeeSplit
	// MainFee is the mint penalty or redemption fee charged by the main pool.
	MainFee FeeSplit
}

// FeederSwap swaps through a feeder pool. Its mAsset and fAsset trade locally. A main pool
// asset is minted into the mAsset before it is swapped for the fAsset, and the fAsset is
// swapped into the mAsset before that is redeemed for a main pool asset. The mAsset itself
// never trades against a main pool asset here.
func FeederSwap(feeder, main types.PoolState, in, out FeederAsset, rawInput, minOutput sdkmath.Uint) (types.PoolState, types.PoolState, FeederSwapResult, error) {
	mIdx, fIdx, err := feeder.FeederIndices()
	if err != nil {
		return types.PoolState{}, types.PoolState{}, FeederSwapResult{}, err
	}
	if feeder.MainPoolID != main.ID {
		return types.PoolState{}, types.PoolState{}, FeederSwapResult{}, types.ErrInvalidState.Wrapf("pool %d is fed by pool %d, not %d", feeder.ID, feeder.MainPoolID, main.ID)
	}

	switch {
	case in.MainPool && out.MainPool:
		return types.PoolState{}, types.PoolState{}, FeederSwapResult{}, types.ErrInvalidPair.Wrap("both assets belong to the main pool")

	case !in.MainPool && !out.MainPool:
		next, res, err := Swap(feeder, in.Index, out.Index, rawInput, minOutput)
		if err != nil {
			return types.PoolState{}, types.PoolState{}, FeederSwapResult{}, err
		}
		return next, main, FeederSwapResult{Output: res.Output, Masset: sdkmath.ZeroUint(), Fee: res.Fee, MainFee: zeroFee()}, nil

	case in.MainPool:
		if out.Index != fIdx {
			return types.PoolState{}, types.PoolState{}, FeederSwapResult{}, types.ErrInvalidPair.Wrapf("main pool asset %d only swaps for the fAsset", in.Index)
		}
		nextMain, minted, err := Mint(main, in.Index, rawInput, sdkmath.Uint{})
		if err != nil {
			return types.PoolState{}, types.PoolState{}, FeederSwapResult{}, err
		}
		nextFeeder, swapped, err := Swap(feeder, mIdx, fIdx, minted.Minted, minOutput)
		if err != nil {
			return types.PoolState{}, types.PoolState{}, FeederSwapResult{}, err
		}
		return nextFeeder, nextMain, FeederSwapResult{Output: swapped.Output, Masset: minted.Minted, Fee: swapped.Fee, MainFee: minted.Fee}, nil

	default:
		if in.Index != fIdx {
			return types.PoolState{}, types.PoolState{}, FeederSwapResult{}, types.ErrInvalidPair.Wrapf("only the fAsset swaps for main pool asset %d", out.Index)
		}
		nextFeeder, swapped, err := Swap(feeder, fIdx, mIdx, rawInput, sdkmath.Uint{})
		if err != nil {
			return types.PoolState{}, types.PoolState{}, FeederSwapResult{}, err
		}
		nextMain, redeemed, err := Redeem(main, out.Index, swapped.Output, minOutput)
		if err != nil {
			return types.PoolState{}, types.PoolState{}, FeederSwapResult{}, err
		}
		return nextFeeder, nextMain, FeederSwapResult{Output: redeemed.Outputs[0], Masset: swapped.Output, Fee: swapped.Fee, MainFee: redeemed.Fee}, nil
	}
}

func zeroFee() FeeSplit {
	return FeeSplit{Total: sdkmath.ZeroUint(), GovShare: sdkmath.ZeroUint(), PoolShare: sdkmath.ZeroUint()}
}

// FeederSwap swaps rawInput of in for out through feeder pool feederID, updating the feeder
// pool and its main pool together.
func (k *Keeper) FeederSwap(ctx context.Context, feederID uint64, in, out FeederAsset, rawInput, minOutput sdkmath.Uint) (FeederSwapResult, error) {
	feeder, err := k.GetPool(ctx, feederID)
	if err != nil {
		return FeederSwapResult{}, err
	}
	if !feeder.IsFeeder() {
		return FeederSwapResult{}, types.ErrInvalidPair.Wrapf("pool %d is not a feeder pool", feederID)
	}

	var res FeederSwapResult
	err = k.executeAll(ctx, []uint64{feederID, feeder.MainPoolID}, "feeder_swap", func(states []types.PoolState) ([]types.PoolState, error) {
		nextFeeder, nextMain, r, err := FeederSwap(states[0], states[1], in, out, rawInput, minOutput)
		if err != nil {
			return nil, err
		}
		res = r
		return []types.PoolState{nextFeeder, nextMain}, nil
	})
	if err != nil {
		return FeederSwapResult{}, err
	}
	k.metrics.recordFee(feederID, "feeder_swap", res.Fee.Total, false)
	k.metrics.recordFee(feeder.MainPoolID, "feeder_swap", res.MainFee.Total, false)
	k.logger.Debug("feeder swap", "pool_id", feederID, "main_pool_id", feeder.MainPoolID,
		"input", rawInput, "output", res.Output, "masset", res.Masset)
	return res, nil
}
