package stablemath

import (
	"github.com/holiman/uint256"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// MaxIterations bounds every Newton loop. Reserves that need more are malformed.
const MaxIterations = 256

// Sum returns the sum of the reserves.
func Sum(x []*uint256.Int) (*uint256.Int, error) {
	sum := new(uint256.Int)
	var err error
	for _, xi := range x {
		if sum, err = Add(sum, xi); err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// ComputeD returns the StableSwap invariant of the canonical reserves x for the
// amplification a (scaled by APrecision).
//
// Newton's method starts at D = sum(x) and iterates
//
//	Dp = D * prod(D / (x_j * n))
//	D' = (nA*S/AP + n*Dp) * D / ((nA - AP)*D/AP + (n+1)*Dp)
//
// with nA = a*n, until two successive values differ by at most one unit or the iteration
// settles into a two value cycle, in which case the lower value is returned.
func ComputeD(x []*uint256.Int, a *uint256.Int) (*uint256.Int, error) {
	sum, err := Sum(x)
	if err != nil {
		return nil, err
	}
	if sum.IsZero() {
		return new(uint256.Int), nil
	}

	n := uint256.NewInt(uint64(len(x)))
	nPlusOne := uint256.NewInt(uint64(len(x) + 1))
	nA, err := Mul(a, n)
	if err != nil {
		return nil, err
	}
	nAMinusP, err := Sub(nA, aPrecision)
	if err != nil {
		return nil, types.ErrInvalidParams.Wrapf("amplification %s too small", a.Dec())
	}

	// nA*S/AP is constant across iterations
	annS, err := MulDiv(nA, sum, aPrecision)
	if err != nil {
		return nil, err
	}

	denoms := make([]*uint256.Int, len(x))
	for j, xj := range x {
		if xj.IsZero() {
			return nil, types.ErrDivisionByZero.Wrapf("reserve %d is empty", j)
		}
		if denoms[j], err = Mul(xj, n); err != nil {
			return nil, err
		}
	}

	d := sum.Clone()
	var before *uint256.Int
	for i := 0; i < MaxIterations; i++ {
		dP := d.Clone()
		for _, denom := range denoms {
			if dP, err = MulDiv(dP, d, denom); err != nil {
				return nil, err
			}
		}

		nDp, err := Mul(dP, n)
		if err != nil {
			return nil, err
		}
		num, err := Add(annS, nDp)
		if err != nil {
			return nil, err
		}
		den1, err := MulDiv(nAMinusP, d, aPrecision)
		if err != nil {
			return nil, err
		}
		den2, err := Mul(nPlusOne, dP)
		if err != nil {
			return nil, err
		}
		den, err := Add(den1, den2)
		if err != nil {
			return nil, err
		}

		prev := d
		if d, err = MulDiv(num, prev, den); err != nil {
			return nil, err
		}
		if hasConverged(d, prev) {
			return d, nil
		}
		// flooring each factor of Dp can leave D alternating between two neighbours
		if before != nil && d.Eq(before) {
			return Min(d, prev), nil
		}
		before = prev
	}
	return nil, types.ErrConvergence.Wrapf("D after %d iterations", MaxIterations)
}

// SolveY returns the reserve of asset idx that keeps the invariant at d while every other
// reserve in x is held fixed. The value of x[idx] is ignored.
//
// It iterates y' = (y^2 + c) / (2y + b - D) from y = D where
//
//	c = D * prod_{j!=idx}(D / (x_j * n)) * D * AP / (nA * n)
//	b = S' + D * AP / nA
func SolveY(x []*uint256.Int, a *uint256.Int, idx int, d *uint256.Int) (*uint256.Int, error) {
	if idx < 0 || idx >= len(x) {
		return nil, types.ErrInvalidAsset.Wrapf("index %d out of range", idx)
	}
	if d.IsZero() {
		return nil, types.ErrInsufficientLiquidity.Wrap("invariant is zero")
	}

	n := uint256.NewInt(uint64(len(x)))
	nA, err := Mul(a, n)
	if err != nil {
		return nil, err
	}
	if nA.IsZero() {
		return nil, types.ErrInvalidParams.Wrap("amplification is zero")
	}

	c := d.Clone()
	sum := new(uint256.Int)
	for j, xj := range x {
		if j == idx {
			continue
		}
		if xj.IsZero() {
			return nil, types.ErrDivisionByZero.Wrapf("reserve %d is empty", j)
		}
		if sum, err = Add(sum, xj); err != nil {
			return nil, err
		}
		denom, err := Mul(xj, n)
		if err != nil {
			return nil, err
		}
		if c, err = MulDiv(c, d, denom); err != nil {
			return nil, err
		}
	}

	nAn, err := Mul(nA, n)
	if err != nil {
		return nil, err
	}
	dP, err := Mul(d, aPrecision)
	if err != nil {
		return nil, err
	}
	if c, err = MulDiv(c, dP, nAn); err != nil {
		return nil, err
	}
	g, err := Div(dP, nA)
	if err != nil {
		return nil, err
	}
	b, err := Add(sum, g)
	if err != nil {
		return nil, err
	}

	y := d.Clone()
	for i := 0; i < MaxIterations; i++ {
		ySq, err := Mul(y, y)
		if err != nil {
			return nil, err
		}
		num, err := Add(ySq, c)
		if err != nil {
			return nil, err
		}
		twoY, err := Add(y, y)
		if err != nil {
			return nil, err
		}
		den, err := Add(twoY, b)
		if err != nil {
			return nil, err
		}
		if !den.Gt(d) {
			return nil, types.ErrConvergence.Wrap("y denominator is not positive")
		}
		den.Sub(den, d)

		prev := y
		y = new(uint256.Int).Div(num, den)
		if hasConverged(y, prev) {
			return y, nil
		}
	}
	return nil, types.ErrConvergence.Wrapf("y after %d iterations", MaxIterations)
}

func hasConverged(v, prev *uint256.Int) bool {
	return !AbsDiff(v, prev).Gt(one)
}
