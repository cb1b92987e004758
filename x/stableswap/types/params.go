package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

const (
	// APrecision is the precision the amplification coefficient is stored with.
	APrecision = 100

	// MaxAmplification bounds the amplification coefficient.
	MaxAmplification = 1_000_000

	// DefaultMaxAssets is the default basket size cap.
	DefaultMaxAssets = 16
)

var fullScaleUint = sdkmath.NewUint(1_000_000_000_000_000_000)

// Percent returns p% scaled to 1e18.
func Percent(p uint64) sdkmath.Uint {
	return sdkmath.NewUint(p).Mul(sdkmath.NewUint(10_000_000_000_000_000))
}

// BasisPoints returns bps/10000 scaled to 1e18.
func BasisPoints(bps uint64) sdkmath.Uint {
	return sdkmath.NewUint(bps).Mul(sdkmath.NewUint(100_000_000_000_000))
}

// WeightLimits are the hard bounds on an asset's share of the basket, scaled to 1e18.
type WeightLimits struct {
	Min sdkmath.Uint `json:"min"`
	Max sdkmath.Uint `json:"max"`
}

// PenaltyCurve is the soft band below Max and above Min in which operations pay an extra
// fee that grows to MaxPenalty at the hard bound. Zero SoftMin or SoftMax disables a side.
type PenaltyCurve struct {
	SoftMin    sdkmath.Uint `json:"soft_min"`
	SoftMax    sdkmath.Uint `json:"soft_max"`
	MaxPenalty sdkmath.Uint `json:"max_penalty"`
}

// InvariantConfig is the per-call configuration of the invariant engine.
// A is the amplification coefficient multiplied by APrecision and Supply is the
// total share supply plus surplus.
type InvariantConfig struct {
	A      sdkmath.Uint `json:"a"`
	Limits WeightLimits `json:"limits"`
	Supply sdkmath.Uint `json:"supply"`
}

// Params are the pool parameters fixed at creation.
type Params struct {
	// Amplification is the plain amplification coefficient, e.g. 120.
	Amplification uint64       `json:"amplification"`
	Limits        WeightLimits `json:"limits"`
	Penalty       PenaltyCurve `json:"penalty"`
	// SwapFee, RedemptionFee and GovFee are scaled to 1e18. GovFee is the share of every
	// accrued fee reserved for governance.
	SwapFee       sdkmath.Uint `json:"swap_fee"`
	RedemptionFee sdkmath.Uint `json:"redemption_fee"`
	GovFee        sdkmath.Uint `json:"gov_fee"`
	// InvariantTolerance is the dust, in canonical base units, by which D may fall short
	// of totalSupply + surplus before the pool is considered broken.
	InvariantTolerance sdkmath.Uint `json:"invariant_tolerance"`
	MaxAssets          uint32       `json:"max_assets"`
}

// DefaultParams returns a default set of parameters
func DefaultParams() Params {
	return Params{
		Amplification: 120,
		Limits: WeightLimits{
			Min: Percent(5),
			Max: Percent(75),
		},
		Penalty: PenaltyCurve{
			SoftMin:    Percent(10),
			SoftMax:    Percent(70),
			MaxPenalty: Percent(5),
		},
		SwapFee:            BasisPoints(6), // 0.06%
		RedemptionFee:      BasisPoints(6), // 0.06%
		GovFee:             sdkmath.ZeroUint(),
		InvariantTolerance: sdkmath.NewUint(100),
		MaxAssets:          DefaultMaxAssets,
	}
}

// InvariantConfig returns the engine configuration for the given supply plus surplus.
func (p Params) InvariantConfig(supply sdkmath.Uint) InvariantConfig {
	return InvariantConfig{
		A:      sdkmath.NewUint(p.Amplification).MulUint64(APrecision),
		Limits: p.Limits,
		Supply: supply,
	}
}

// Validate validates the set of params
func (p Params) Validate() error {
	if p.Amplification == 0 || p.Amplification > MaxAmplification {
		return ErrInvalidParams.Wrapf("amplification must be in [1, %d], got %d", MaxAmplification, p.Amplification)
	}
	if err := p.Limits.Validate(); err != nil {
		return err
	}
	if err := p.Penalty.Validate(p.Limits); err != nil {
		return err
	}
	for name, fee := range map[string]sdkmath.Uint{
		"swap fee":       p.SwapFee,
		"redemption fee": p.RedemptionFee,
		"gov fee":        p.GovFee,
	} {
		if fee.IsNil() {
			return ErrInvalidParams.Wrapf("%s is nil", name)
		}
		if fee.GT(fullScaleUint) {
			return ErrInvalidParams.Wrapf("%s %s exceeds 100%%", name, fee)
		}
	}
	if !p.SwapFee.Add(p.Penalty.MaxPenalty).LT(fullScaleUint) {
		return ErrInvalidParams.Wrap("swap fee plus max penalty must be below 100%")
	}
	if !p.RedemptionFee.Add(p.Penalty.MaxPenalty).LT(fullScaleUint) {
		return ErrInvalidParams.Wrap("redemption fee plus max penalty must be below 100%")
	}
	if p.InvariantTolerance.IsNil() {
		return ErrInvalidParams.Wrap("invariant tolerance is nil")
	}
	if p.MaxAssets < 2 || p.MaxAssets > DefaultMaxAssets {
		return ErrInvalidParams.Wrapf("max assets must be in [2, %d], got %d", DefaultMaxAssets, p.MaxAssets)
	}
	return nil
}

// Validate checks 0 <= Min < Max <= 100%.
func (l WeightLimits) Validate() error {
	if l.Min.IsNil() || l.Max.IsNil() {
		return ErrInvalidParams.Wrap("weight limits are nil")
	}
	if !l.Min.LT(l.Max) {
		return ErrInvalidParams.Wrapf("min weight %s must be below max weight %s", l.Min, l.Max)
	}
	if l.Max.GT(fullScaleUint) {
		return ErrInvalidParams.Wrapf("max weight %s exceeds 100%%", l.Max)
	}
	return nil
}

// Validate checks that the soft band lies inside the hard limits.
func (c PenaltyCurve) Validate(l WeightLimits) error {
	if c.SoftMin.IsNil() || c.SoftMax.IsNil() || c.MaxPenalty.IsNil() {
		return ErrInvalidParams.Wrap("penalty curve is nil")
	}
	if !c.SoftMax.IsZero() && (!c.SoftMax.LT(l.Max) || !c.SoftMax.GT(l.Min)) {
		return ErrInvalidParams.Wrapf("soft max %s must lie in (%s, %s)", c.SoftMax, l.Min, l.Max)
	}
	if !c.SoftMin.IsZero() && (!c.SoftMin.GT(l.Min) || !c.SoftMin.LT(l.Max)) {
		return ErrInvalidParams.Wrapf("soft min %s must lie in (%s, %s)", c.SoftMin, l.Min, l.Max)
	}
	if !c.SoftMin.IsZero() && !c.SoftMax.IsZero() && !c.SoftMin.LT(c.SoftMax) {
		return ErrInvalidParams.Wrap("soft min must be below soft max")
	}
	if c.MaxPenalty.GT(fullScaleUint) {
		return ErrInvalidParams.Wrapf("max penalty %s exceeds 100%%", c.MaxPenalty)
	}
	return nil
}

// String implements fmt.Stringer.
func (p Params) String() string {
	return fmt.Sprintf("A=%d limits=[%s,%s] swap_fee=%s redemption_fee=%s",
		p.Amplification, p.Limits.Min, p.Limits.Max, p.SwapFee, p.RedemptionFee)
}
