package keeper

import (
	sdkmath "cosmossdk.io/math"
	"github.com/holiman/uint256"

	"github.com/paw-chain/stableswap/x/stableswap/stablemath"
	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// FeeSplit is the division of an accrued fee between surplus and governance.
type FeeSplit struct {
	Total     sdkmath.Uint
	GovShare  sdkmath.Uint
	PoolShare sdkmath.Uint
}

// SplitFee divides fee by the governance rate. The whole fee always accrues to surplus;
// GovShare only reports the part reserved for governance.
func SplitFee(fee, govRate sdkmath.Uint) (FeeSplit, error) {
	f, err := stablemath.FromUint(fee)
	if err != nil {
		return FeeSplit{}, err
	}
	rate, err := stablemath.FromUint(govRate)
	if err != nil {
		return FeeSplit{}, err
	}
	gov, err := stablemath.MulTruncate(f, rate)
	if err != nil {
		return FeeSplit{}, err
	}
	pool, err := stablemath.Sub(f, gov)
	if err != nil {
		return FeeSplit{}, err
	}
	return FeeSplit{Total: fee, GovShare: stablemath.ToUint(gov), PoolShare: stablemath.ToUint(pool)}, nil
}

// accrue adds fee to the pool surplus.
func accrue(state *types.PoolState, fee *uint256.Int) {
	state.Surplus = state.Surplus.Add(stablemath.ToUint(fee))
}

// feeRate returns base + penalty as a fee rate.
func feeRate(base sdkmath.Uint, penalty *uint256.Int) (*uint256.Int, error) {
	b, err := stablemath.FromUint(base)
	if err != nil {
		return nil, err
	}
	rate, err := stablemath.Add(b, penalty)
	if err != nil {
		return nil, err
	}
	if !rate.Lt(stablemath.FullScaleInt()) {
		return nil, types.ErrInvalidParams.Wrapf("fee rate %s is not below 100%%", rate.Dec())
	}
	return rate, nil
}

// chargeShares returns the fee taken from shares at rate and the remaining net shares.
func chargeShares(shares, rate *uint256.Int) (fee, net *uint256.Int, err error) {
	if fee, err = stablemath.MulTruncate(shares, rate); err != nil {
		return nil, nil, err
	}
	if net, err = stablemath.Sub(shares, fee); err != nil {
		return nil, nil, err
	}
	return fee, net, nil
}

// grossUp returns the shares that leave burned after a fee at rate, burned/(1-rate), and
// the fee part of it.
func grossUp(burned, rate *uint256.Int) (total, fee *uint256.Int, err error) {
	keep, err := stablemath.Sub(stablemath.FullScaleInt(), rate)
	if err != nil {
		return nil, nil, err
	}
	if total, err = stablemath.DivPrecisely(burned, keep); err != nil {
		return nil, nil, err
	}
	if fee, err = stablemath.Sub(total, burned); err != nil {
		return nil, nil, err
	}
	return total, fee, nil
}

// CheckInvariant verifies D(reserves) + tolerance >= totalSupply + surplus and returns D.
// A pool without supply is always solvent.
func CheckInvariant(state types.PoolState) (sdkmath.Uint, error) {
	claims := state.SupplyWithSurplus()
	x, sum, err := stablemath.Reserves(state.Basket.Assets)
	if err != nil {
		return sdkmath.Uint{}, err
	}
	if sum.IsZero() {
		if !claims.IsZero() {
			return sdkmath.Uint{}, types.ErrInvariantBroken.Wrapf("pool %d: empty basket backs %s shares", state.ID, claims)
		}
		return sdkmath.ZeroUint(), nil
	}
	if claims.IsZero() {
		return stablemath.ToUint(sum), nil
	}
	a, err := stablemath.FromUint(state.Params.InvariantConfig(claims).A)
	if err != nil {
		return sdkmath.Uint{}, err
	}
	d, err := stablemath.ComputeD(x, a)
	if err != nil {
		return sdkmath.Uint{}, err
	}
	du := stablemath.ToUint(d)
	if du.Add(state.Params.InvariantTolerance).LT(claims) {
		return du, types.ErrInvariantBroken.Wrapf("pool %d: D %s below supply plus surplus %s", state.ID, du, claims)
	}
	return du, nil
}
