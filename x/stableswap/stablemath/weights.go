package stablemath

import (
	"github.com/holiman/uint256"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// Bounds holds the hard weight limits and the soft penalty band, all scaled to 1e18.
// A zero SoftMin or SoftMax disables that side of the penalty curve.
type Bounds struct {
	Min        *uint256.Int
	Max        *uint256.Int
	SoftMin    *uint256.Int
	SoftMax    *uint256.Int
	MaxPenalty *uint256.Int
}

// NewBounds converts the configured limits and penalty curve.
func NewBounds(limits types.WeightLimits, curve types.PenaltyCurve) (Bounds, error) {
	var (
		b   Bounds
		err error
	)
	if b.Min, err = FromUint(limits.Min); err != nil {
		return Bounds{}, err
	}
	if b.Max, err = FromUint(limits.Max); err != nil {
		return Bounds{}, err
	}
	if b.SoftMin, err = FromUint(curve.SoftMin); err != nil {
		return Bounds{}, err
	}
	if b.SoftMax, err = FromUint(curve.SoftMax); err != nil {
		return Bounds{}, err
	}
	if b.MaxPenalty, err = FromUint(curve.MaxPenalty); err != nil {
		return Bounds{}, err
	}
	return b, nil
}

// Weight returns x*1e18/sum.
func Weight(x, sum *uint256.Int) (*uint256.Int, error) {
	if sum.IsZero() {
		return nil, types.ErrDivisionByZero.Wrap("basket is empty")
	}
	return DivPrecisely(x, sum)
}

// Weights returns the weight of every reserve. An empty basket has no weights.
func Weights(x []*uint256.Int) ([]*uint256.Int, error) {
	sum, err := Sum(x)
	if err != nil {
		return nil, err
	}
	if sum.IsZero() {
		return nil, nil
	}
	w := make([]*uint256.Int, len(x))
	for i, xi := range x {
		if w[i], err = Weight(xi, sum); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// CheckBounds rejects a reserve change that leaves an asset outside the hard limits while
// moving it further out. pre may be nil for an empty basket, in which case every asset
// must be inside the limits. With corrective set, assets pushed above Max are tolerated;
// this is the case when an overweight asset is being redeemed.
func CheckBounds(pre, post []*uint256.Int, b Bounds, corrective bool) error {
	for i, w := range post {
		var before *uint256.Int
		if pre != nil {
			before = pre[i]
		}
		if w.Gt(b.Max) && !corrective && (before == nil || w.Gt(before)) {
			return types.ErrExceedsWeightLimits.Wrapf("asset %d weight %s above max %s", i, w.Dec(), b.Max.Dec())
		}
		if w.Lt(b.Min) && (before == nil || w.Lt(before)) {
			return types.ErrExceedsWeightLimits.Wrapf("asset %d weight %s below min %s", i, w.Dec(), b.Min.Dec())
		}
	}
	return nil
}

// Overweight reports whether the weight is above the hard max.
func (b Bounds) Overweight(w *uint256.Int) bool {
	return w.Gt(b.Max)
}

// CheckOverweightRedemption requires that, when any asset is overweight before a
// redemption, every redeemed asset is itself overweight. It returns whether all of the
// redeemed assets are overweight.
func CheckOverweightRedemption(pre []*uint256.Int, redeemed []int, b Bounds) (bool, error) {
	if pre == nil {
		return false, nil
	}
	anyOver := false
	for _, w := range pre {
		if b.Overweight(w) {
			anyOver = true
			break
		}
	}
	if !anyOver {
		return false, nil
	}
	for _, i := range redeemed {
		if !b.Overweight(pre[i]) {
			return false, types.ErrMustRedeemOverweight.Wrapf("asset %d is not overweight", i)
		}
	}
	return true, nil
}

// Penalty returns the extra fee rate for a weight inside the soft band. The curve is
// MaxPenalty * r^2 where r is the distance into the band as a fraction of its width, so it
// is zero at the soft bound and MaxPenalty at the hard bound.
func Penalty(w *uint256.Int, b Bounds, above bool) (*uint256.Int, error) {
	var dist, span *uint256.Int
	if above {
		if b.SoftMax.IsZero() || !w.Gt(b.SoftMax) || !b.Max.Gt(b.SoftMax) {
			return new(uint256.Int), nil
		}
		dist = new(uint256.Int).Sub(w, b.SoftMax)
		span = new(uint256.Int).Sub(b.Max, b.SoftMax)
	} else {
		if b.SoftMin.IsZero() || !w.Lt(b.SoftMin) || !b.SoftMin.Gt(b.Min) {
			return new(uint256.Int), nil
		}
		dist = new(uint256.Int).Sub(b.SoftMin, w)
		span = new(uint256.Int).Sub(b.SoftMin, b.Min)
	}
	if !dist.Lt(span) {
		return b.MaxPenalty.Clone(), nil
	}
	r, err := DivPrecisely(dist, span)
	if err != nil {
		return nil, err
	}
	rSq, err := MulTruncate(r, r)
	if err != nil {
		return nil, err
	}
	return MulTruncate(b.MaxPenalty, rSq)
}

// DepositPenalty returns the largest upper band penalty among the touched assets whose
// weight increased.
func DepositPenalty(pre, post []*uint256.Int, touched []int, b Bounds) (*uint256.Int, error) {
	return bandPenalty(pre, post, touched, b, true)
}

// WithdrawalPenalty returns the largest lower band penalty among the touched assets whose
// weight decreased.
func WithdrawalPenalty(pre, post []*uint256.Int, touched []int, b Bounds) (*uint256.Int, error) {
	return bandPenalty(pre, post, touched, b, false)
}

func bandPenalty(pre, post []*uint256.Int, touched []int, b Bounds, above bool) (*uint256.Int, error) {
	worst := new(uint256.Int)
	for _, i := range touched {
		if pre != nil {
			if above && !post[i].Gt(pre[i]) {
				continue
			}
			if !above && !post[i].Lt(pre[i]) {
				continue
			}
		}
		p, err := Penalty(post[i], b, above)
		if err != nil {
			return nil, err
		}
		if p.Gt(worst) {
			worst = p
		}
	}
	return worst, nil
}
