package keeper

import (
	sdkmath "cosmossdk.io/math"
	"github.com/holiman/uint256"

	"github.com/paw-chain/stableswap/x/stableswap/stablemath"
	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// MintResult describes a completed mint.
type MintResult struct {
	// Minted is the number of shares credited to the caller.
	Minted sdkmath.Uint
	// Penalty is the number of shares withheld into surplus because the deposit pushed an
	// asset into the soft band.
	Penalty sdkmath.Uint
	Fee     FeeSplit
}

// SwapResult describes a completed swap.
type SwapResult struct {
	Output sdkmath.Uint
	// Fee is denominated in canonical units of D.
	Fee         FeeSplit
	FeeRate     sdkmath.Uint
	PenaltyRate sdkmath.Uint
}

// RedeemResult describes a completed redemption of any kind.
type RedeemResult struct {
	Outputs      []sdkmath.Uint
	SharesBurned sdkmath.Uint
	Fee          FeeSplit
	PenaltyRate  sdkmath.Uint
}

// checkOperable rejects pools on which only proportional redemption, or nothing at all,
// may run.
func checkOperable(state types.PoolState) error {
	if state.Halted {
		return types.ErrPoolHalted.Wrapf("pool %d: %s", state.ID, state.HaltReason)
	}
	if state.Basket.Failed {
		return types.ErrBasketFailed.Wrapf("pool %d", state.ID)
	}
	if state.Basket.HasUnhealthy() {
		return types.ErrInvalidAsset.Wrapf("pool %d has unhealthy assets", state.ID)
	}
	return nil
}

func viewOf(state types.PoolState) (*basketView, error) {
	return newBasketView(state.Basket.Assets, state.Params.InvariantConfig(state.SupplyWithSurplus()), state.Params.Penalty)
}

func orZero(u sdkmath.Uint) sdkmath.Uint {
	if u.IsNil() {
		return sdkmath.ZeroUint()
	}
	return u
}

// Mint deposits rawInput of asset idx and credits shares to the caller.
func Mint(state types.PoolState, idx int, rawInput, minOutput sdkmath.Uint) (types.PoolState, MintResult, error) {
	return mint(state, []int{idx}, []sdkmath.Uint{rawInput}, minOutput, true)
}

// MintMulti deposits several assets at once.
func MintMulti(state types.PoolState, indices []int, rawInputs []sdkmath.Uint, minOutput sdkmath.Uint) (types.PoolState, MintResult, error) {
	return mint(state, indices, rawInputs, minOutput, false)
}

func mint(state types.PoolState, indices []int, rawInputs []sdkmath.Uint, minOutput sdkmath.Uint, single bool) (types.PoolState, MintResult, error) {
	if err := checkOperable(state); err != nil {
		return types.PoolState{}, MintResult{}, err
	}
	v, err := viewOf(state)
	if err != nil {
		return types.PoolState{}, MintResult{}, err
	}
	q, err := v.mint(indices, rawInputs, single)
	if err != nil {
		return types.PoolState{}, MintResult{}, err
	}
	rate, err := stablemath.DepositPenalty(q.pre, q.post, indices, v.bounds)
	if err != nil {
		return types.PoolState{}, MintResult{}, err
	}
	penalty, net, err := chargeShares(q.amount, rate)
	if err != nil {
		return types.PoolState{}, MintResult{}, err
	}
	minted := stablemath.ToUint(net)
	if minted.IsZero() {
		return types.PoolState{}, MintResult{}, types.ErrZeroAmount.Wrap("nothing minted")
	}
	if minted.LT(orZero(minOutput)) {
		return types.PoolState{}, MintResult{}, types.ErrSlippage.Wrapf("minted %s below minimum %s", minted, minOutput)
	}

	next := state.Clone()
	for i, idx := range indices {
		asset := &next.Basket.Assets[idx]
		asset.VaultBalance = asset.VaultBalance.Add(orZero(rawInputs[i]))
	}
	next.TotalSupply = next.TotalSupply.Add(minted)
	accrue(&next, penalty)
	if _, err := CheckInvariant(next); err != nil {
		return types.PoolState{}, MintResult{}, err
	}
	split, err := SplitFee(stablemath.ToUint(penalty), state.Params.GovFee)
	if err != nil {
		return types.PoolState{}, MintResult{}, err
	}
	return next, MintResult{Minted: minted, Penalty: split.Total, Fee: split}, nil
}

// Swap exchanges rawInput of asset in for asset out. The fee rate is the swap fee plus the
// soft band penalty of the resulting weights.
func Swap(state types.PoolState, in, out int, rawInput, minOutput sdkmath.Uint) (types.PoolState, SwapResult, error) {
	if err := checkOperable(state); err != nil {
		return types.PoolState{}, SwapResult{}, err
	}
	v, err := viewOf(state)
	if err != nil {
		return types.PoolState{}, SwapResult{}, err
	}
	rate, err := feeRate(state.Params.SwapFee, new(uint256.Int))
	if err != nil {
		return types.PoolState{}, SwapResult{}, err
	}
	q, err := v.swap(in, out, rawInput, rate)
	if err != nil {
		return types.PoolState{}, SwapResult{}, err
	}
	deposit, err := stablemath.DepositPenalty(q.pre, q.post, []int{in}, v.bounds)
	if err != nil {
		return types.PoolState{}, SwapResult{}, err
	}
	withdrawal, err := stablemath.WithdrawalPenalty(q.pre, q.post, []int{out}, v.bounds)
	if err != nil {
		return types.PoolState{}, SwapResult{}, err
	}
	penalty := stablemath.Max(deposit, withdrawal)
	if !penalty.IsZero() {
		if rate, err = feeRate(state.Params.SwapFee, penalty); err != nil {
			return types.PoolState{}, SwapResult{}, err
		}
		if q, err = v.swap(in, out, rawInput, rate); err != nil {
			return types.PoolState{}, SwapResult{}, err
		}
	}

	output := stablemath.ToUint(q.raw)
	if output.IsZero() {
		return types.PoolState{}, SwapResult{}, types.ErrZeroAmount.Wrap("output rounds to zero")
	}
	if output.LT(orZero(minOutput)) {
		return types.PoolState{}, SwapResult{}, types.ErrSlippage.Wrapf("output %s below minimum %s", output, minOutput)
	}

	next := state.Clone()
	assetIn, assetOut := &next.Basket.Assets[in], &next.Basket.Assets[out]
	if assetOut.VaultBalance.LT(output) {
		return types.PoolState{}, SwapResult{}, types.ErrInsufficientLiquidity.Wrapf("asset %d holds %s, swap needs %s", out, assetOut.VaultBalance, output)
	}
	assetIn.VaultBalance = assetIn.VaultBalance.Add(rawInput)
	assetOut.VaultBalance = assetOut.VaultBalance.Sub(output)
	accrue(&next, q.fee)
	if _, err := CheckInvariant(next); err != nil {
		return types.PoolState{}, SwapResult{}, err
	}
	split, err := SplitFee(stablemath.ToUint(q.fee), state.Params.GovFee)
	if err != nil {
		return types.PoolState{}, SwapResult{}, err
	}
	return next, SwapResult{
		Output:      output,
		Fee:         split,
		FeeRate:     stablemath.ToUint(rate),
		PenaltyRate: stablemath.ToUint(penalty),
	}, nil
}

// Redeem burns shares for a single asset. The redemption fee, plus the soft band penalty when
// the asset drops into the lower band, stays in the pool as surplus.
func Redeem(state types.PoolState, idx int, shares, minOutput sdkmath.Uint) (types.PoolState, RedeemResult, error) {
	if err := checkOperable(state); err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	s, err := burnable(state, shares)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	v, err := viewOf(state)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	rate, err := feeRate(state.Params.RedemptionFee, new(uint256.Int))
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	fee, net, err := chargeShares(s, rate)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	q, err := v.redeem(idx, stablemath.ToUint(net))
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	penalty, err := stablemath.WithdrawalPenalty(q.pre, q.post, []int{idx}, v.bounds)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	if !penalty.IsZero() {
		if rate, err = feeRate(state.Params.RedemptionFee, penalty); err != nil {
			return types.PoolState{}, RedeemResult{}, err
		}
		if fee, net, err = chargeShares(s, rate); err != nil {
			return types.PoolState{}, RedeemResult{}, err
		}
		if q, err = v.redeem(idx, stablemath.ToUint(net)); err != nil {
			return types.PoolState{}, RedeemResult{}, err
		}
	}

	output := stablemath.ToUint(q.raw)
	if output.IsZero() {
		return types.PoolState{}, RedeemResult{}, types.ErrZeroAmount.Wrap("output rounds to zero")
	}
	if output.LT(orZero(minOutput)) {
		return types.PoolState{}, RedeemResult{}, types.ErrSlippage.Wrapf("output %s below minimum %s", output, minOutput)
	}

	next := state.Clone()
	asset := &next.Basket.Assets[idx]
	if asset.VaultBalance.LT(output) {
		return types.PoolState{}, RedeemResult{}, types.ErrInsufficientLiquidity.Wrapf("asset %d holds %s, redemption needs %s", idx, asset.VaultBalance, output)
	}
	asset.VaultBalance = asset.VaultBalance.Sub(output)
	next.TotalSupply = next.TotalSupply.Sub(shares)
	accrue(&next, fee)
	if _, err := CheckInvariant(next); err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	split, err := SplitFee(stablemath.ToUint(fee), state.Params.GovFee)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	return next, RedeemResult{
		Outputs:      []sdkmath.Uint{output},
		SharesBurned: shares,
		Fee:          split,
		PenaltyRate:  stablemath.ToUint(penalty),
	}, nil
}

// RedeemExact withdraws exact quantities of the given assets. The caller burns the shares
// the withdrawal costs grossed up by the fee rate, never more than maxShares. A nil
// maxShares disables the bound.
func RedeemExact(state types.PoolState, indices []int, rawOutputs []sdkmath.Uint, maxShares sdkmath.Uint) (types.PoolState, RedeemResult, error) {
	if err := checkOperable(state); err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	v, err := viewOf(state)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	q, err := v.redeemExact(indices, rawOutputs)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	penalty, err := stablemath.WithdrawalPenalty(q.pre, q.post, indices, v.bounds)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	rate, err := feeRate(state.Params.RedemptionFee, penalty)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	total, fee, err := grossUp(q.amount, rate)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	burned := stablemath.ToUint(total)
	if !maxShares.IsNil() && burned.GT(maxShares) {
		return types.PoolState{}, RedeemResult{}, types.ErrSlippage.Wrapf("redemption burns %s shares, max %s", burned, maxShares)
	}
	if burned.GT(state.TotalSupply) {
		return types.PoolState{}, RedeemResult{}, types.ErrInsufficientLiquidity.Wrapf("redemption burns %s shares, supply is %s", burned, state.TotalSupply)
	}

	next := state.Clone()
	outputs := make([]sdkmath.Uint, len(indices))
	for i, idx := range indices {
		outputs[i] = orZero(rawOutputs[i])
		asset := &next.Basket.Assets[idx]
		if asset.VaultBalance.LT(outputs[i]) {
			return types.PoolState{}, RedeemResult{}, types.ErrInsufficientLiquidity.Wrapf("asset %d holds %s, redemption needs %s", idx, asset.VaultBalance, outputs[i])
		}
		asset.VaultBalance = asset.VaultBalance.Sub(outputs[i])
	}
	next.TotalSupply = next.TotalSupply.Sub(burned)
	accrue(&next, fee)
	if _, err := CheckInvariant(next); err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	split, err := SplitFee(stablemath.ToUint(fee), state.Params.GovFee)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	return next, RedeemResult{
		Outputs:      outputs,
		SharesBurned: burned,
		Fee:          split,
		PenaltyRate:  stablemath.ToUint(penalty),
	}, nil
}

// RedeemProportionally burns shares for a pro rata slice of every asset. It is the only
// operation allowed on a failed basket or one holding unhealthy assets. minOutputs is
// either empty or holds one bound per asset.
func RedeemProportionally(state types.PoolState, shares sdkmath.Uint, minOutputs []sdkmath.Uint) (types.PoolState, RedeemResult, error) {
	if state.Halted {
		return types.PoolState{}, RedeemResult{}, types.ErrPoolHalted.Wrapf("pool %d: %s", state.ID, state.HaltReason)
	}
	n := len(state.Basket.Assets)
	if len(minOutputs) != 0 && len(minOutputs) != n {
		return types.PoolState{}, RedeemResult{}, types.ErrInputLengthMismatch.Wrapf("%d minimum outputs for %d assets", len(minOutputs), n)
	}
	s, err := burnable(state, shares)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	rate, err := feeRate(state.Params.RedemptionFee, new(uint256.Int))
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	fee, net, err := chargeShares(s, rate)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	supply, err := stablemath.FromUint(state.SupplyWithSurplus())
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	outs, err := redeemProportionally(state.Basket.Assets, net, supply)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}

	next := state.Clone()
	outputs := make([]sdkmath.Uint, n)
	for i, o := range outs {
		outputs[i] = stablemath.ToUint(o)
		if len(minOutputs) != 0 && outputs[i].LT(orZero(minOutputs[i])) {
			return types.PoolState{}, RedeemResult{}, types.ErrSlippage.Wrapf("asset %d output %s below minimum %s", i, outputs[i], minOutputs[i])
		}
		asset := &next.Basket.Assets[i]
		asset.VaultBalance = asset.VaultBalance.Sub(outputs[i])
	}
	next.TotalSupply = next.TotalSupply.Sub(shares)
	accrue(&next, fee)
	if !next.Basket.ProportionalOnly() {
		if _, err := CheckInvariant(next); err != nil {
			return types.PoolState{}, RedeemResult{}, err
		}
	}
	split, err := SplitFee(stablemath.ToUint(fee), state.Params.GovFee)
	if err != nil {
		return types.PoolState{}, RedeemResult{}, err
	}
	return next, RedeemResult{Outputs: outputs, SharesBurned: shares, Fee: split, PenaltyRate: sdkmath.ZeroUint()}, nil
}

// burnable checks that shares is positive and covered by the outstanding supply.
func burnable(state types.PoolState, shares sdkmath.Uint) (*uint256.Int, error) {
	if shares.IsNil() || shares.IsZero() {
		return nil, types.ErrZeroAmount.Wrap("Qty==0")
	}
	if shares.GT(state.TotalSupply) {
		return nil, types.ErrInsufficientLiquidity.Wrapf("shares %s exceed supply %s", shares, state.TotalSupply)
	}
	return stablemath.FromUint(shares)
}
