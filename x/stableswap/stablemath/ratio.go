package stablemath

import (
	sdkmath "cosmossdk.io/math"
	"github.com/holiman/uint256"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// ToCanonical converts a native quantity to canonical 18 decimal units, rounding down.
func ToCanonical(qty, ratio *uint256.Int) (*uint256.Int, error) {
	return MulRatioTruncate(qty, ratio)
}

// ToCanonicalCeil converts a native quantity to canonical units, rounding up.
func ToCanonicalCeil(qty, ratio *uint256.Int) (*uint256.Int, error) {
	return MulRatioTruncateCeil(qty, ratio)
}

// FromCanonical converts canonical units back to the asset's native decimals, rounding down.
func FromCanonical(qty, ratio *uint256.Int) (*uint256.Int, error) {
	return DivRatioPrecisely(qty, ratio)
}

// FromCanonicalCeil converts canonical units to native decimals, rounding up. Use it when the
// caller must deposit at least qty canonical units.
func FromCanonicalCeil(qty, ratio *uint256.Int) (*uint256.Int, error) {
	if ratio.IsZero() {
		return nil, types.ErrDivisionByZero.Wrap("ratio is zero")
	}
	scaled, overflow := new(uint256.Int).MulOverflow(qty, ratioScale)
	if overflow {
		return nil, types.ErrOverflow.Wrapf("cannot scale %s", qty.Dec())
	}
	quo, rem := new(uint256.Int), new(uint256.Int)
	quo.DivMod(scaled, ratio, rem)
	if !rem.IsZero() {
		quo.AddUint64(quo, 1)
	}
	return quo, nil
}

// Reserves returns the canonical reserve of every asset and their sum.
func Reserves(assets []types.Asset) ([]*uint256.Int, *uint256.Int, error) {
	x := make([]*uint256.Int, len(assets))
	sum := new(uint256.Int)
	for i, a := range assets {
		balance, err := FromUint(a.VaultBalance)
		if err != nil {
			return nil, nil, err
		}
		ratio, err := FromUint(a.Ratio)
		if err != nil {
			return nil, nil, err
		}
		r, err := ToCanonical(balance, ratio)
		if err != nil {
			return nil, nil, err
		}
		x[i] = r
		if sum, err = Add(sum, r); err != nil {
			return nil, nil, err
		}
	}
	return x, sum, nil
}

// FromUint converts a public quantity to a 256-bit integer. A nil quantity is zero.
func FromUint(u sdkmath.Uint) (*uint256.Int, error) {
	if u.IsNil() {
		return new(uint256.Int), nil
	}
	z, overflow := uint256.FromBig(u.BigInt())
	if overflow {
		return nil, types.ErrOverflow.Wrapf("%s does not fit 256 bits", u.String())
	}
	return z, nil
}

// ToUint converts a 256-bit integer to the public quantity type.
func ToUint(z *uint256.Int) sdkmath.Uint {
	if z == nil {
		return sdkmath.ZeroUint()
	}
	return sdkmath.NewUintFromBigInt(z.ToBig())
}
