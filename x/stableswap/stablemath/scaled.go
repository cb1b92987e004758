// Package stablemath implements the fixed point arithmetic and the StableSwap invariant
// solver used to price every pool operation.
//
// All values are unsigned 256-bit integers. Functions never mutate their arguments and
// report overflow, underflow and division by zero as errors instead of wrapping.
package stablemath

import (
	"github.com/holiman/uint256"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

const (
	// Precision is the number of decimals of FullScale.
	Precision = 18
	// FullScale is the precision of canonical units, weights and fee rates (1e18).
	FullScale = 1_000_000_000_000_000_000
	// RatioScale is the precision of asset ratios (1e8).
	RatioScale = types.RatioScale
	// APrecision is the precision of the amplification coefficient.
	APrecision = 100
)

var (
	fullScale  = uint256.NewInt(FullScale)
	ratioScale = uint256.NewInt(RatioScale)
	aPrecision = uint256.NewInt(APrecision)
	one        = uint256.NewInt(1)
)

// FullScaleInt returns a fresh copy of FullScale.
func FullScaleInt() *uint256.Int { return fullScale.Clone() }

// MulTruncateScale returns x*y/scale rounded down.
func MulTruncateScale(x, y, scale *uint256.Int) (*uint256.Int, error) {
	if scale.IsZero() {
		return nil, types.ErrDivisionByZero.Wrap("scale is zero")
	}
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, types.ErrOverflow.Wrapf("%s * %s", x.Dec(), y.Dec())
	}
	return z.Div(z, scale), nil
}

// MulTruncate returns x*y/1e18 rounded down.
func MulTruncate(x, y *uint256.Int) (*uint256.Int, error) {
	return MulTruncateScale(x, y, fullScale)
}

// MulTruncateCeil returns x*y/1e18 rounded up. It is zero only when x or y is zero.
func MulTruncateCeil(x, y *uint256.Int) (*uint256.Int, error) {
	return mulCeil(x, y, fullScale)
}

// DivPrecisely returns x*1e18/y rounded down.
func DivPrecisely(x, y *uint256.Int) (*uint256.Int, error) {
	return divScaled(x, y, fullScale)
}

// MulRatioTruncate returns x*ratio/1e8 rounded down.
func MulRatioTruncate(x, ratio *uint256.Int) (*uint256.Int, error) {
	return MulTruncateScale(x, ratio, ratioScale)
}

// MulRatioTruncateCeil returns x*ratio/1e8 rounded up.
func MulRatioTruncateCeil(x, ratio *uint256.Int) (*uint256.Int, error) {
	return mulCeil(x, ratio, ratioScale)
}

// DivRatioPrecisely returns x*1e8/ratio rounded down.
func DivRatioPrecisely(x, ratio *uint256.Int) (*uint256.Int, error) {
	return divScaled(x, ratio, ratioScale)
}

// ScaleInteger returns n*1e18.
func ScaleInteger(n *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(n, fullScale)
	if overflow {
		return nil, types.ErrOverflow.Wrapf("cannot scale %s", n.Dec())
	}
	return z, nil
}

// MulDiv returns x*y/d rounded down using a 512-bit intermediate product.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, types.ErrDivisionByZero.Wrap("mul div by zero")
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, types.ErrOverflow.Wrapf("%s * %s / %s", x.Dec(), y.Dec(), d.Dec())
	}
	return z, nil
}

// Add returns x+y.
func Add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, types.ErrOverflow.Wrapf("%s + %s", x.Dec(), y.Dec())
	}
	return z, nil
}

// Sub returns x-y and fails when y > x.
func Sub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, types.ErrOverflow.Wrapf("underflow: %s - %s", x.Dec(), y.Dec())
	}
	return z, nil
}

// Mul returns x*y.
func Mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, types.ErrOverflow.Wrapf("%s * %s", x.Dec(), y.Dec())
	}
	return z, nil
}

// Div returns x/y rounded down.
func Div(x, y *uint256.Int) (*uint256.Int, error) {
	if y.IsZero() {
		return nil, types.ErrDivisionByZero.Wrapf("%s / 0", x.Dec())
	}
	return new(uint256.Int).Div(x, y), nil
}

// Min returns the smaller of x and y.
func Min(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return x.Clone()
	}
	return y.Clone()
}

// Max returns the larger of x and y.
func Max(x, y *uint256.Int) *uint256.Int {
	if x.Gt(y) {
		return x.Clone()
	}
	return y.Clone()
}

// Clamp returns x bounded above by upperBound.
func Clamp(x, upperBound *uint256.Int) *uint256.Int {
	return Min(x, upperBound)
}

// AbsDiff returns |x-y|.
func AbsDiff(x, y *uint256.Int) *uint256.Int {
	if x.Gt(y) {
		return new(uint256.Int).Sub(x, y)
	}
	return new(uint256.Int).Sub(y, x)
}

func mulCeil(x, y, scale *uint256.Int) (*uint256.Int, error) {
	scaled, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, types.ErrOverflow.Wrapf("%s * %s", x.Dec(), y.Dec())
	}
	bump := new(uint256.Int).Sub(scale, one)
	if _, overflow = scaled.AddOverflow(scaled, bump); overflow {
		return nil, types.ErrOverflow.Wrap("ceil rounding")
	}
	return scaled.Div(scaled, scale), nil
}

func divScaled(x, y, scale *uint256.Int) (*uint256.Int, error) {
	if y.IsZero() {
		return nil, types.ErrDivisionByZero.Wrapf("%s / 0", x.Dec())
	}
	z, overflow := new(uint256.Int).MulOverflow(x, scale)
	if overflow {
		return nil, types.ErrOverflow.Wrapf("cannot scale %s", x.Dec())
	}
	return z.Div(z, y), nil
}
