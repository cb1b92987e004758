package types_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

func TestDefaultParamsValid(t *testing.T) {
	p := types.DefaultParams()
	require.NoError(t, p.Validate())
	require.Equal(t, "600000000000000", p.SwapFee.String())
	require.Equal(t, "750000000000000000", p.Limits.Max.String())

	cfg := p.InvariantConfig(sdkmath.NewUint(42))
	require.Equal(t, sdkmath.NewUint(12_000), cfg.A)
	require.Equal(t, sdkmath.NewUint(42), cfg.Supply)
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *types.Params)
	}{
		{"zero amplification", func(p *types.Params) { p.Amplification = 0 }},
		{"amplification too large", func(p *types.Params) { p.Amplification = types.MaxAmplification + 1 }},
		{"min above max", func(p *types.Params) { p.Limits.Min = types.Percent(80) }},
		{"max above 100%", func(p *types.Params) { p.Limits.Max = types.Percent(101) }},
		{"nil limit", func(p *types.Params) { p.Limits.Min = sdkmath.Uint{} }},
		{"soft max above max", func(p *types.Params) { p.Penalty.SoftMax = types.Percent(80) }},
		{"soft min below min", func(p *types.Params) { p.Penalty.SoftMin = types.Percent(4) }},
		{"soft min above soft max", func(p *types.Params) {
			p.Penalty.SoftMin = types.Percent(60)
			p.Penalty.SoftMax = types.Percent(50)
		}},
		{"swap fee above 100%", func(p *types.Params) { p.SwapFee = types.Percent(101) }},
		{"swap fee plus penalty at 100%", func(p *types.Params) { p.SwapFee = types.Percent(95) }},
		{"redemption fee plus penalty at 100%", func(p *types.Params) { p.RedemptionFee = types.Percent(96) }},
		{"nil gov fee", func(p *types.Params) { p.GovFee = sdkmath.Uint{} }},
		{"nil tolerance", func(p *types.Params) { p.InvariantTolerance = sdkmath.Uint{} }},
		{"single asset baskets", func(p *types.Params) { p.MaxAssets = 1 }},
		{"too many assets", func(p *types.Params) { p.MaxAssets = types.DefaultMaxAssets + 1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := types.DefaultParams()
			tc.mutate(&p)
			require.ErrorIs(t, p.Validate(), types.ErrInvalidParams)
		})
	}

	p := types.DefaultParams()
	p.Penalty = types.PenaltyCurve{SoftMin: sdkmath.ZeroUint(), SoftMax: sdkmath.ZeroUint(), MaxPenalty: sdkmath.ZeroUint()}
	require.NoError(t, p.Validate(), "a disabled penalty curve is valid")
}

func TestScaleHelpers(t *testing.T) {
	require.Equal(t, "50000000000000000", types.Percent(5).String())
	require.Equal(t, "1000000000000000000", types.Percent(100).String())
	require.Equal(t, "100000000000000", types.BasisPoints(1).String())
}
