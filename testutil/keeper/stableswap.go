package keeper

import (
	"context"
	"testing"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/stableswap/x/stableswap/keeper"
	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// StableSwapKeeper creates a keeper backed by an in-memory database with default params.
func StableSwapKeeper(t testing.TB) (*keeper.Keeper, context.Context) {
	t.Helper()

	k := keeper.NewKeeper(dbm.NewMemDB(), log.NewNopLogger(), types.DefaultParams())
	ctx := context.Background()

	// Initialize module genesis
	require.NoError(t, k.InitGenesis(ctx, *types.DefaultGenesis()))

	return k, ctx
}

// Units returns n whole units of an asset with the given decimals.
func Units(n uint64, decimals uint32) sdkmath.Uint {
	u := sdkmath.NewUint(n)
	for i := uint32(0); i < decimals; i++ {
		u = u.MulUint64(10)
	}
	return u
}

// Assets returns empty Normal assets with the given native decimals.
func Assets(t require.TestingT, decimals ...uint32) []types.Asset {
	assets := make([]types.Asset, len(decimals))
	for i, d := range decimals {
		a, err := types.NewAsset(d, sdkmath.ZeroUint())
		require.NoError(t, err)
		assets[i] = a
	}
	return assets
}

// CreateTestPool creates a pool over 18 decimal assets and seeds it with a balanced mint of
// units of every asset.
func CreateTestPool(t testing.TB, k *keeper.Keeper, ctx context.Context, params *types.Params, n int, units uint64) uint64 {
	t.Helper()

	decimals := make([]uint32, n)
	indices := make([]int, n)
	amounts := make([]sdkmath.Uint, n)
	for i := range decimals {
		decimals[i] = types.CanonicalDecimals
		indices[i] = i
		amounts[i] = Units(units, types.CanonicalDecimals)
	}
	pool, err := k.CreatePool(ctx, params, Assets(t, decimals...))
	require.NoError(t, err)

	_, err = k.MintMulti(ctx, pool.ID, indices, amounts, sdkmath.Uint{})
	require.NoError(t, err)
	return pool.ID
}

// SeededState returns a pool state over 18 decimal assets seeded with units of every asset,
// without touching any store. It accepts property test handles as well as *testing.T.
func SeededState(t require.TestingT, params types.Params, n int, units uint64) types.PoolState {
	decimals := make([]uint32, n)
	indices := make([]int, n)
	amounts := make([]sdkmath.Uint, n)
	for i := range decimals {
		decimals[i] = types.CanonicalDecimals
		indices[i] = i
		amounts[i] = Units(units, types.CanonicalDecimals)
	}
	state := types.NewPoolState(1, params, Assets(t, decimals...))
	next, _, err := keeper.MintMulti(state, indices, amounts, sdkmath.Uint{})
	require.NoError(t, err)
	return next
}
