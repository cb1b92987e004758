package types_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

func TestRatioForDecimals(t *testing.T) {
	tests := []struct {
		decimals uint32
		want     string
	}{
		{18, "100000000"},
		{8, "1000000000000000000"},
		{6, "100000000000000000000"},
		{0, "100000000000000000000000000"},
	}
	for _, tc := range tests {
		ratio, err := types.RatioForDecimals(tc.decimals)
		require.NoError(t, err)
		require.Equal(t, tc.want, ratio.String(), "decimals %d", tc.decimals)
	}

	_, err := types.RatioForDecimals(19)
	require.ErrorIs(t, err, types.ErrInvalidAsset)
}

func TestAssetStatus(t *testing.T) {
	for s := types.StatusNormal; s <= types.StatusFailed; s++ {
		parsed, err := types.ParseAssetStatus(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
		require.True(t, s.Valid())
		require.Equal(t, s == types.StatusNormal, s.IsHealthy())
	}

	_, err := types.ParseAssetStatus("rugged")
	require.ErrorIs(t, err, types.ErrInvalidAsset)

	bogus := types.AssetStatus(42)
	require.False(t, bogus.Valid())
	require.False(t, bogus.IsHealthy())
	require.Equal(t, "unknown(42)", bogus.String())
}

func TestAssetValidate(t *testing.T) {
	a, err := types.NewAsset(6, sdkmath.NewUint(10))
	require.NoError(t, err)
	require.NoError(t, a.Validate())

	zeroRatio := a
	zeroRatio.Ratio = sdkmath.ZeroUint()
	require.ErrorIs(t, zeroRatio.Validate(), types.ErrInvalidAsset)

	nilBalance := a
	nilBalance.VaultBalance = sdkmath.Uint{}
	require.ErrorIs(t, nilBalance.Validate(), types.ErrInvalidAsset)

	badStatus := a
	badStatus.Status = types.AssetStatus(42)
	require.ErrorIs(t, badStatus.Validate(), types.ErrInvalidAsset)

	badRole := a
	badRole.Role = types.AssetRole(7)
	require.ErrorIs(t, badRole.Validate(), types.ErrInvalidAsset)
}

func TestAssetRole(t *testing.T) {
	require.Equal(t, "basset", types.RoleBasset.String())
	require.Equal(t, "masset", types.RoleMasset.String())
	require.Equal(t, "fasset", types.RoleFasset.String())
	require.Equal(t, "unknown(9)", types.AssetRole(9).String())
	require.False(t, types.AssetRole(3).Valid())

	tests := []struct {
		a, b types.AssetRole
		want bool
	}{
		{types.RoleBasset, types.RoleBasset, true},
		{types.RoleMasset, types.RoleFasset, true},
		{types.RoleFasset, types.RoleMasset, true},
		{types.RoleBasset, types.RoleMasset, false},
		{types.RoleMasset, types.RoleBasset, false},
		{types.RoleBasset, types.RoleFasset, false},
		{types.RoleMasset, types.RoleMasset, false},
		{types.RoleFasset, types.RoleFasset, false},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, types.SwapEligible(tc.a, tc.b), "%s/%s", tc.a, tc.b)
	}
}

func feederState(t *testing.T, id, mainID uint64) types.PoolState {
	t.Helper()
	usd, err := types.NewAsset(18, sdkmath.ZeroUint())
	require.NoError(t, err)
	f, err := types.NewAsset(6, sdkmath.ZeroUint())
	require.NoError(t, err)
	usd.Role, f.Role = types.RoleMasset, types.RoleFasset
	p := types.NewPoolState(id, types.DefaultParams(), []types.Asset{usd, f})
	p.MainPoolID = mainID
	return p
}

func TestPoolStateRoles(t *testing.T) {
	feeder := feederState(t, 2, 1)
	require.NoError(t, feeder.Validate())
	require.True(t, feeder.IsFeeder())
	m, f, err := feeder.FeederIndices()
	require.NoError(t, err)
	require.Equal(t, 0, m)
	require.Equal(t, 1, f)

	dai, err := types.NewAsset(18, sdkmath.ZeroUint())
	require.NoError(t, err)
	main := types.NewPoolState(1, types.DefaultParams(), []types.Asset{dai, dai})
	require.NoError(t, main.Validate())
	_, _, err = main.FeederIndices()
	require.ErrorIs(t, err, types.ErrInvalidState)

	tests := []struct {
		name   string
		mutate func(*types.PoolState)
	}{
		{"main pool holding an mAsset", func(p *types.PoolState) {
			p.MainPoolID = 0
		}},
		{"feeder feeding itself", func(p *types.PoolState) {
			p.MainPoolID = p.ID
		}},
		{"feeder without an fAsset", func(p *types.PoolState) {
			p.Basket.Assets[1].Role = types.RoleMasset
		}},
		{"feeder holding a bAsset", func(p *types.PoolState) {
			p.Basket.Assets[1].Role = types.RoleBasset
		}},
		{"feeder with three assets", func(p *types.PoolState) {
			p.Basket.Assets = append(p.Basket.Assets, p.Basket.Assets[1])
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := feederState(t, 2, 1)
			tc.mutate(&p)
			require.ErrorIs(t, p.Validate(), types.ErrInvalidState)
		})
	}
}

func TestBasket(t *testing.T) {
	usdc, err := types.NewAsset(6, sdkmath.ZeroUint())
	require.NoError(t, err)
	dai, err := types.NewAsset(18, sdkmath.ZeroUint())
	require.NoError(t, err)

	b := types.Basket{Assets: []types.Asset{usdc, dai}, MaxAssets: 2}
	require.NoError(t, b.Validate())
	require.False(t, b.ProportionalOnly())

	b.Assets[1].Status = types.StatusLiquidating
	require.True(t, b.HasUnhealthy())
	require.True(t, b.ProportionalOnly())

	b.Assets[1].Status = types.StatusNormal
	b.Failed = true
	require.True(t, b.ProportionalOnly())

	b.Assets = append(b.Assets, dai)
	require.ErrorIs(t, b.Validate(), types.ErrInvalidState)
	require.ErrorIs(t, types.Basket{Assets: []types.Asset{dai}}.Validate(), types.ErrInvalidState)
}

func TestPoolStateClone(t *testing.T) {
	dai, err := types.NewAsset(18, sdkmath.ZeroUint())
	require.NoError(t, err)
	p := types.NewPoolState(1, types.DefaultParams(), []types.Asset{dai, dai})
	require.NoError(t, p.Validate())

	c := p.Clone()
	c.Basket.Assets[0].Status = types.StatusFailed
	require.Equal(t, types.StatusNormal, p.Basket.Assets[0].Status)

	p.TotalSupply = sdkmath.NewUint(5)
	p.Surplus = sdkmath.NewUint(2)
	require.Equal(t, sdkmath.NewUint(7), p.SupplyWithSurplus())
}

func TestPoolKeys(t *testing.T) {
	key := types.GetPoolKey(258)
	require.Equal(t, []byte{0x01, 0, 0, 0, 0, 0, 0, 0x01, 0x02}, key)
	require.Equal(t, uint64(258), types.PoolIDFromKey(key))
	require.Zero(t, types.PoolIDFromKey([]byte{0x01}))
}
