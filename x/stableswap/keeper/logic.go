package keeper

import (
	sdkmath "cosmossdk.io/math"
	"github.com/holiman/uint256"

	"github.com/paw-chain/stableswap/x/stableswap/stablemath"
	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// minScaledInput is the smallest canonical quantity accepted by mint and swap.
var minScaledInput = uint256.NewInt(1_000_000)

// basketView is the canonical view of a basket used by a single computation.
type basketView struct {
	assets []types.Asset
	x      []*uint256.Int
	ratios []*uint256.Int
	a      *uint256.Int
	supply *uint256.Int
	bounds stablemath.Bounds
}

// quote is the outcome of a computation together with the weights it was checked against.
type quote struct {
	// amount is shares minted or burned, or the canonical output of a swap or redemption.
	amount *uint256.Int
	// raw is the output converted back to the asset's native decimals.
	raw  *uint256.Int
	fee  *uint256.Int
	pre  []*uint256.Int
	post []*uint256.Int
	// corrective is set when the operation redeemed overweight assets only.
	corrective bool
}

func newBasketView(assets []types.Asset, cfg types.InvariantConfig, curve types.PenaltyCurve) (*basketView, error) {
	x, _, err := stablemath.Reserves(assets)
	if err != nil {
		return nil, err
	}
	v := &basketView{assets: assets, x: x, ratios: make([]*uint256.Int, len(assets))}
	for i, asset := range assets {
		if v.ratios[i], err = stablemath.FromUint(asset.Ratio); err != nil {
			return nil, err
		}
	}
	if v.a, err = stablemath.FromUint(cfg.A); err != nil {
		return nil, err
	}
	if v.supply, err = stablemath.FromUint(cfg.Supply); err != nil {
		return nil, err
	}
	if v.bounds, err = stablemath.NewBounds(cfg.Limits, curve); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *basketView) inRange(idx int) bool {
	return idx >= 0 && idx < len(v.assets)
}

func (v *basketView) checkAsset(idx int) error {
	if !v.inRange(idx) {
		return types.ErrInvalidAsset.Wrapf("index %d out of range [0, %d)", idx, len(v.assets))
	}
	if !v.assets[idx].Status.IsHealthy() {
		return types.ErrInvalidAsset.Wrapf("asset %d is %s", idx, v.assets[idx].Status)
	}
	return nil
}

func (v *basketView) checkIndices(indices []int) error {
	seen := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if err := v.checkAsset(idx); err != nil {
			return err
		}
		if _, dup := seen[idx]; dup {
			return types.ErrInvalidAsset.Wrapf("duplicate asset %d", idx)
		}
		seen[idx] = struct{}{}
	}
	return nil
}

func (v *basketView) reserves() []*uint256.Int {
	out := make([]*uint256.Int, len(v.x))
	for i, xi := range v.x {
		out[i] = xi.Clone()
	}
	return out
}

func toInts(qs []sdkmath.Uint) ([]*uint256.Int, error) {
	out := make([]*uint256.Int, len(qs))
	for i, q := range qs {
		z, err := stablemath.FromUint(q)
		if err != nil {
			return nil, err
		}
		out[i] = z
	}
	return out, nil
}

// ComputeMint returns the shares minted for depositing rawInput of asset idx.
func ComputeMint(assets []types.Asset, idx int, rawInput sdkmath.Uint, cfg types.InvariantConfig) (sdkmath.Uint, error) {
	v, err := newBasketView(assets, cfg, types.PenaltyCurve{})
	if err != nil {
		return sdkmath.Uint{}, err
	}
	q, err := v.mint([]int{idx}, []sdkmath.Uint{rawInput}, true)
	if err != nil {
		return sdkmath.Uint{}, err
	}
	return stablemath.ToUint(q.amount), nil
}

// ComputeMintMulti returns the shares minted for depositing several assets at once.
func ComputeMintMulti(assets []types.Asset, indices []int, rawInputs []sdkmath.Uint, cfg types.InvariantConfig) (sdkmath.Uint, error) {
	v, err := newBasketView(assets, cfg, types.PenaltyCurve{})
	if err != nil {
		return sdkmath.Uint{}, err
	}
	q, err := v.mint(indices, rawInputs, false)
	if err != nil {
		return sdkmath.Uint{}, err
	}
	return stablemath.ToUint(q.amount), nil
}

func (v *basketView) mint(indices []int, rawInputs []sdkmath.Uint, single bool) (*quote, error) {
	if len(indices) != len(rawInputs) {
		return nil, types.ErrInputLengthMismatch.Wrapf("%d indices, %d inputs", len(indices), len(rawInputs))
	}
	if len(indices) == 0 {
		return nil, types.ErrZeroAmount.Wrap("no inputs")
	}
	if err := v.checkIndices(indices); err != nil {
		return nil, err
	}
	inputs, err := toInts(rawInputs)
	if err != nil {
		return nil, err
	}

	post := v.reserves()
	total := new(uint256.Int)
	for i, idx := range indices {
		if inputs[i].IsZero() {
			continue
		}
		scaled, err := stablemath.ToCanonical(inputs[i], v.ratios[idx])
		if err != nil {
			return nil, err
		}
		if post[idx], err = stablemath.Add(post[idx], scaled); err != nil {
			return nil, err
		}
		if total, err = stablemath.Add(total, scaled); err != nil {
			return nil, err
		}
	}
	if total.IsZero() {
		return nil, types.ErrZeroAmount.Wrap("Qty==0")
	}
	if single && !total.Gt(minScaledInput) {
		return nil, types.ErrInputTooSmall.Wrapf("scaled input %s must exceed %s", total.Dec(), minScaledInput.Dec())
	}

	q := &quote{}
	if q.pre, err = stablemath.Weights(v.x); err != nil {
		return nil, err
	}
	if q.post, err = stablemath.Weights(post); err != nil {
		return nil, err
	}
	if err := stablemath.CheckBounds(q.pre, q.post, v.bounds, false); err != nil {
		return nil, err
	}

	k0 := new(uint256.Int)
	if q.pre != nil {
		if k0, err = stablemath.ComputeD(v.x, v.a); err != nil {
			return nil, err
		}
	}
	k1, err := stablemath.ComputeD(post, v.a)
	if err != nil {
		return nil, err
	}
	if v.supply.IsZero() {
		q.amount, err = stablemath.Sub(k1, k0)
		return q, err
	}
	grown, err := stablemath.MulDiv(v.supply, k1, k0)
	if err != nil {
		return nil, err
	}
	q.amount, err = stablemath.Sub(grown, v.supply)
	return q, err
}

// ComputeSwap returns the native output of swapping rawInput of asset in for asset out and
// the canonical fee charged on the growth of D.
func ComputeSwap(assets []types.Asset, in, out int, rawInput, feeRate sdkmath.Uint, cfg types.InvariantConfig) (sdkmath.Uint, sdkmath.Uint, error) {
	v, err := newBasketView(assets, cfg, types.PenaltyCurve{})
	if err != nil {
		return sdkmath.Uint{}, sdkmath.Uint{}, err
	}
	rate, err := stablemath.FromUint(feeRate)
	if err != nil {
		return sdkmath.Uint{}, sdkmath.Uint{}, err
	}
	q, err := v.swap(in, out, rawInput, rate)
	if err != nil {
		return sdkmath.Uint{}, sdkmath.Uint{}, err
	}
	return stablemath.ToUint(q.raw), stablemath.ToUint(q.fee), nil
}

func (v *basketView) swap(in, out int, rawInput sdkmath.Uint, feeRate *uint256.Int) (*quote, error) {
	if in == out {
		return nil, types.ErrInvalidPair.Wrapf("cannot swap asset %d for itself", in)
	}
	if err := v.checkAsset(in); err != nil {
		return nil, types.ErrInvalidPair.Wrapf("input: %s", err)
	}
	if err := v.checkAsset(out); err != nil {
		return nil, types.ErrInvalidPair.Wrapf("output: %s", err)
	}
	if inRole, outRole := v.assets[in].Role, v.assets[out].Role; !types.SwapEligible(inRole, outRole) {
		return nil, types.ErrInvalidPair.Wrapf("%s cannot be swapped for %s", inRole, outRole)
	}
	input, err := stablemath.FromUint(rawInput)
	if err != nil {
		return nil, err
	}
	if input.IsZero() {
		return nil, types.ErrZeroAmount.Wrap("Qty==0")
	}
	scaled, err := stablemath.ToCanonical(input, v.ratios[in])
	if err != nil {
		return nil, err
	}
	if !scaled.Gt(minScaledInput) {
		return nil, types.ErrInputTooSmall.Wrapf("scaled input %s must exceed %s", scaled.Dec(), minScaledInput.Dec())
	}

	post := v.reserves()
	if post[in], err = stablemath.Add(post[in], scaled); err != nil {
		return nil, err
	}
	if err := v.checkInputWeight(in, post); err != nil {
		return nil, err
	}
	k0, err := stablemath.ComputeD(v.x, v.a)
	if err != nil {
		return nil, err
	}
	k1, err := stablemath.ComputeD(post, v.a)
	if err != nil {
		return nil, err
	}
	growth, err := stablemath.Sub(k1, k0)
	if err != nil {
		return nil, err
	}
	q := &quote{}
	if q.fee, err = stablemath.MulTruncate(growth, feeRate); err != nil {
		return nil, err
	}
	target, err := stablemath.Add(k0, q.fee)
	if err != nil {
		return nil, err
	}
	y, err := stablemath.SolveY(post, v.a, out, target)
	if err != nil {
		return nil, err
	}
	if !post[out].Gt(new(uint256.Int).AddUint64(y, 1)) {
		return nil, types.ErrInsufficientLiquidity.Wrapf("asset %d reserve %s cannot cover the swap", out, post[out].Dec())
	}
	q.amount = new(uint256.Int).Sub(post[out], y)
	q.amount.SubUint64(q.amount, 1)
	if q.raw, err = stablemath.FromCanonical(q.amount, v.ratios[out]); err != nil {
		return nil, err
	}
	post[out] = new(uint256.Int).Sub(post[out], q.amount)

	if q.pre, err = stablemath.Weights(v.x); err != nil {
		return nil, err
	}
	if q.post, err = stablemath.Weights(post); err != nil {
		return nil, err
	}
	if err := stablemath.CheckBounds(q.pre, q.post, v.bounds, false); err != nil {
		return nil, err
	}
	return q, nil
}

// checkInputWeight rejects a swap whose input alone lifts the input asset above the hard
// max before the post-trade invariant is solved. Removing the output only raises that
// weight, so the full check after pricing would fail the same way.
func (v *basketView) checkInputWeight(in int, post []*uint256.Int) error {
	sum, err := stablemath.Sum(post)
	if err != nil {
		return err
	}
	w, err := stablemath.Weight(post[in], sum)
	if err != nil {
		return err
	}
	if !w.Gt(v.bounds.Max) {
		return nil
	}
	pre, err := stablemath.Weights(v.x)
	if err != nil {
		return err
	}
	if pre != nil && !w.Gt(pre[in]) {
		return nil
	}
	return types.ErrExceedsWeightLimits.Wrapf("asset %d weight %s above max %s", in, w.Dec(), v.bounds.Max.Dec())
}

// ComputeRedeem returns the native output of asset idx for burning netShares.
func ComputeRedeem(assets []types.Asset, idx int, netShares sdkmath.Uint, cfg types.InvariantConfig) (sdkmath.Uint, error) {
	v, err := newBasketView(assets, cfg, types.PenaltyCurve{})
	if err != nil {
		return sdkmath.Uint{}, err
	}
	q, err := v.redeem(idx, netShares)
	if err != nil {
		return sdkmath.Uint{}, err
	}
	return stablemath.ToUint(q.raw), nil
}

func (v *basketView) redeem(idx int, netShares sdkmath.Uint) (*quote, error) {
	if err := v.checkAsset(idx); err != nil {
		return nil, err
	}
	net, err := stablemath.FromUint(netShares)
	if err != nil {
		return nil, err
	}
	if net.IsZero() {
		return nil, types.ErrZeroAmount.Wrap("Qty==0")
	}
	if !v.supply.Gt(net) {
		return nil, types.ErrInsufficientLiquidity.Wrapf("cannot redeem %s of %s shares for a single asset", net.Dec(), v.supply.Dec())
	}

	k0, err := stablemath.ComputeD(v.x, v.a)
	if err != nil {
		return nil, err
	}
	remaining := new(uint256.Int).Sub(v.supply, net)
	kFinal, err := stablemath.MulDiv(k0, remaining, v.supply)
	if err != nil {
		return nil, err
	}
	kFinal.AddUint64(kFinal, 1)
	y, err := stablemath.SolveY(v.x, v.a, idx, kFinal)
	if err != nil {
		return nil, err
	}
	if !v.x[idx].Gt(new(uint256.Int).AddUint64(y, 1)) {
		return nil, types.ErrInsufficientLiquidity.Wrapf("asset %d reserve %s cannot cover the redemption", idx, v.x[idx].Dec())
	}
	q := &quote{amount: new(uint256.Int).Sub(v.x[idx], y)}
	q.amount.SubUint64(q.amount, 1)
	if q.raw, err = stablemath.FromCanonical(q.amount, v.ratios[idx]); err != nil {
		return nil, err
	}
	post := v.reserves()
	post[idx] = new(uint256.Int).Sub(post[idx], q.amount)
	if err := v.checkRedemption(q, post, []int{idx}); err != nil {
		return nil, err
	}
	return q, nil
}

// checkRedemption fills in the weights of q and enforces the overweight and hard limit rules.
func (v *basketView) checkRedemption(q *quote, post []*uint256.Int, redeemed []int) error {
	var err error
	if q.pre, err = stablemath.Weights(v.x); err != nil {
		return err
	}
	if q.post, err = stablemath.Weights(post); err != nil {
		return err
	}
	if q.corrective, err = stablemath.CheckOverweightRedemption(q.pre, redeemed, v.bounds); err != nil {
		return err
	}
	if q.post == nil {
		return nil
	}
	return stablemath.CheckBounds(q.pre, q.post, v.bounds, q.corrective)
}

// ComputeRedeemExact returns the shares that must be burned, before the redemption fee, to
// withdraw exactly rawOutputs of the given assets.
func ComputeRedeemExact(assets []types.Asset, indices []int, rawOutputs []sdkmath.Uint, cfg types.InvariantConfig) (sdkmath.Uint, error) {
	v, err := newBasketView(assets, cfg, types.PenaltyCurve{})
	if err != nil {
		return sdkmath.Uint{}, err
	}
	q, err := v.redeemExact(indices, rawOutputs)
	if err != nil {
		return sdkmath.Uint{}, err
	}
	return stablemath.ToUint(q.amount), nil
}

func (v *basketView) redeemExact(indices []int, rawOutputs []sdkmath.Uint) (*quote, error) {
	if len(indices) != len(rawOutputs) {
		return nil, types.ErrInputLengthMismatch.Wrapf("%d indices, %d outputs", len(indices), len(rawOutputs))
	}
	if err := v.checkIndices(indices); err != nil {
		return nil, err
	}
	outputs, err := toInts(rawOutputs)
	if err != nil {
		return nil, err
	}
	if v.supply.IsZero() {
		return nil, types.ErrInsufficientLiquidity.Wrap("pool has no supply")
	}

	post := v.reserves()
	total := new(uint256.Int)
	for i, idx := range indices {
		if outputs[i].IsZero() {
			continue
		}
		scaled, err := stablemath.ToCanonicalCeil(outputs[i], v.ratios[idx])
		if err != nil {
			return nil, err
		}
		if scaled.Gt(post[idx]) {
			return nil, types.ErrInsufficientLiquidity.Wrapf("asset %d reserve %s below output %s", idx, post[idx].Dec(), scaled.Dec())
		}
		post[idx] = new(uint256.Int).Sub(post[idx], scaled)
		if total, err = stablemath.Add(total, scaled); err != nil {
			return nil, err
		}
	}
	if total.IsZero() {
		return nil, types.ErrZeroAmount.Wrap("Must redeem some")
	}

	q := &quote{}
	if err := v.checkRedemption(q, post, indices); err != nil {
		return nil, err
	}
	k0, err := stablemath.ComputeD(v.x, v.a)
	if err != nil {
		return nil, err
	}
	k1, err := stablemath.ComputeD(post, v.a)
	if err != nil {
		return nil, err
	}
	kept, err := stablemath.MulDiv(k1, v.supply, k0)
	if err != nil {
		return nil, err
	}
	if q.amount, err = stablemath.Sub(v.supply, kept); err != nil {
		return nil, err
	}
	q.amount.AddUint64(q.amount, 1)
	return q, nil
}

// ComputeRedeemProportionally returns the native output of every asset for burning shares
// out of supply, where supply includes the surplus.
func ComputeRedeemProportionally(assets []types.Asset, shares, supply sdkmath.Uint) ([]sdkmath.Uint, error) {
	s, err := stablemath.FromUint(shares)
	if err != nil {
		return nil, err
	}
	total, err := stablemath.FromUint(supply)
	if err != nil {
		return nil, err
	}
	outs, err := redeemProportionally(assets, s, total)
	if err != nil {
		return nil, err
	}
	res := make([]sdkmath.Uint, len(outs))
	for i, o := range outs {
		res[i] = stablemath.ToUint(o)
	}
	return res, nil
}

func redeemProportionally(assets []types.Asset, shares, supply *uint256.Int) ([]*uint256.Int, error) {
	if shares.IsZero() {
		return nil, types.ErrZeroAmount.Wrap("Qty==0")
	}
	if supply.IsZero() {
		return nil, types.ErrInsufficientLiquidity.Wrap("pool has no supply")
	}
	if shares.Gt(supply) {
		return nil, types.ErrInsufficientLiquidity.Wrapf("shares %s exceed supply %s", shares.Dec(), supply.Dec())
	}
	outs := make([]*uint256.Int, len(assets))
	for i, a := range assets {
		balance, err := stablemath.FromUint(a.VaultBalance)
		if err != nil {
			return nil, err
		}
		if outs[i], err = stablemath.MulDiv(balance, shares, supply); err != nil {
			return nil, err
		}
	}
	return outs, nil
}

// Weights reports the share of every asset in the basket of state as decimals in [0, 1].
// An empty basket has no weights.
func Weights(state types.PoolState) ([]sdkmath.LegacyDec, error) {
	x, _, err := stablemath.Reserves(state.Basket.Assets)
	if err != nil {
		return nil, err
	}
	w, err := stablemath.Weights(x)
	if err != nil || w == nil {
		return nil, err
	}
	out := make([]sdkmath.LegacyDec, len(w))
	for i, wi := range w {
		out[i] = sdkmath.LegacyNewDecFromBigIntWithPrec(wi.ToBig(), stablemath.Precision)
	}
	return out, nil
}
