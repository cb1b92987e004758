package keeper_test

import (
	"context"
	"sync"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	keepertest "github.com/paw-chain/stableswap/testutil/keeper"
	"github.com/paw-chain/stableswap/x/stableswap/keeper"
	"github.com/paw-chain/stableswap/x/stableswap/types"
)

type KeeperTestSuite struct {
	suite.Suite
	keeper *keeper.Keeper
	ctx    context.Context
}

func (suite *KeeperTestSuite) SetupTest() {
	suite.keeper, suite.ctx = keepertest.StableSwapKeeper(suite.T())
}

func TestKeeperTestSuite(t *testing.T) {
	suite.Run(t, new(KeeperTestSuite))
}

func (suite *KeeperTestSuite) TestCreatePool() {
	pool, err := suite.keeper.CreatePool(suite.ctx, nil, keepertest.Assets(suite.T(), 18, 6, 8))
	suite.Require().NoError(err)
	suite.Require().Equal(uint64(1), pool.ID)
	suite.Require().Equal(types.DefaultParams().String(), pool.Params.String())
	suite.Require().True(pool.TotalSupply.IsZero())

	stored, err := suite.keeper.GetPool(suite.ctx, pool.ID)
	suite.Require().NoError(err)
	suite.Require().Len(stored.Basket.Assets, 3)
	suite.Require().Equal(pool.Basket.Assets[1].Ratio, stored.Basket.Assets[1].Ratio)

	params := types.DefaultParams()
	params.Amplification = 200
	second, err := suite.keeper.CreatePool(suite.ctx, &params, keepertest.Assets(suite.T(), 18, 18))
	suite.Require().NoError(err)
	suite.Require().Equal(uint64(2), second.ID)
	suite.Require().Equal(uint64(200), second.Params.Amplification)

	pools, err := suite.keeper.GetAllPools(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(pools, 2)
	suite.Require().Equal(uint64(1), pools[0].ID)
	suite.Require().Equal(uint64(2), pools[1].ID)
}

func (suite *KeeperTestSuite) TestCreatePoolErrors() {
	tests := []struct {
		name   string
		params func() *types.Params
		assets func() []types.Asset
		err    error
	}{
		{
			name:   "single asset",
			assets: func() []types.Asset { return keepertest.Assets(suite.T(), 18) },
			err:    types.ErrInvalidState,
		},
		{
			name: "funded asset",
			assets: func() []types.Asset {
				assets := keepertest.Assets(suite.T(), 18, 18)
				assets[0].VaultBalance = sdkmath.NewUint(1)
				return assets
			},
			err: types.ErrInvalidAsset,
		},
		{
			name: "zero amplification",
			params: func() *types.Params {
				p := types.DefaultParams()
				p.Amplification = 0
				return &p
			},
			assets: func() []types.Asset { return keepertest.Assets(suite.T(), 18, 18) },
			err:    types.ErrInvalidParams,
		},
		{
			name: "more assets than allowed",
			params: func() *types.Params {
				p := types.DefaultParams()
				p.MaxAssets = 2
				return &p
			},
			assets: func() []types.Asset { return keepertest.Assets(suite.T(), 18, 18, 18) },
			err:    types.ErrInvalidState,
		},
	}
	for _, tc := range tests {
		suite.Run(tc.name, func() {
			var params *types.Params
			if tc.params != nil {
				params = tc.params()
			}
			_, err := suite.keeper.CreatePool(suite.ctx, params, tc.assets())
			suite.Require().ErrorIs(err, tc.err)
		})
	}
}

func (suite *KeeperTestSuite) TestGetPoolNotFound() {
	_, err := suite.keeper.GetPool(suite.ctx, 42)
	suite.Require().ErrorIs(err, types.ErrPoolNotFound)

	_, err = suite.keeper.Mint(suite.ctx, 42, 0, e18(1), sdkmath.Uint{})
	suite.Require().ErrorIs(err, types.ErrPoolNotFound)
}

func (suite *KeeperTestSuite) TestOperationsPersist() {
	id := keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ctx, nil, 3, 100)

	minted, err := suite.keeper.Mint(suite.ctx, id, 0, e18(50), e18(49))
	suite.Require().NoError(err)
	suite.Require().Equal("49943494504349966491", minted.Minted.String())

	pool, err := suite.keeper.GetPool(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Require().Equal(e18(300).Add(minted.Minted), pool.TotalSupply)
	suite.Require().Equal(e18(150), pool.Basket.Assets[0].VaultBalance)

	swapped, err := suite.keeper.Swap(suite.ctx, id, 1, 2, e18(5), sdkmath.Uint{})
	suite.Require().NoError(err)
	pool, err = suite.keeper.GetPool(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Require().Equal(swapped.Fee.Total, pool.Surplus)
	suite.Require().Equal(e18(105), pool.Basket.Assets[1].VaultBalance)

	redeemed, err := suite.keeper.Redeem(suite.ctx, id, 0, e18(10), sdkmath.Uint{})
	suite.Require().NoError(err)
	suite.Require().Len(redeemed.Outputs, 1)

	exact, err := suite.keeper.RedeemExact(suite.ctx, id, []int{1, 2}, []sdkmath.Uint{e18(2), e18(3)}, sdkmath.Uint{})
	suite.Require().NoError(err)
	suite.Require().False(exact.SharesBurned.IsZero())

	prop, err := suite.keeper.RedeemProportionally(suite.ctx, id, e18(30), nil)
	suite.Require().NoError(err)
	suite.Require().Len(prop.Outputs, 3)

	suite.Require().NoError(suite.keeper.Invariants(suite.ctx))
}

func (suite *KeeperTestSuite) TestRejectedOperationLeavesPoolUntouched() {
	id := keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ctx, nil, 3, 100)
	before, err := suite.keeper.GetPool(suite.ctx, id)
	suite.Require().NoError(err)

	_, err = suite.keeper.Swap(suite.ctx, id, 0, 1, e18(10), e18(10))
	suite.Require().ErrorIs(err, types.ErrSlippage)

	after, err := suite.keeper.GetPool(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Require().Equal(before, after)
}

func (suite *KeeperTestSuite) TestHaltAndResume() {
	id := keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ctx, nil, 3, 100)

	suite.Require().NoError(suite.keeper.HaltPool(suite.ctx, id, "maintenance"))
	suite.Require().ErrorIs(suite.keeper.HaltPool(suite.ctx, id, "again"), types.ErrPoolHalted)

	pool, err := suite.keeper.GetPool(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Require().True(pool.Halted)
	suite.Require().Equal("maintenance", pool.HaltReason)

	_, err = suite.keeper.Swap(suite.ctx, id, 0, 1, e18(1), sdkmath.Uint{})
	suite.Require().ErrorIs(err, types.ErrPoolHalted)
	_, err = suite.keeper.RedeemProportionally(suite.ctx, id, e18(1), nil)
	suite.Require().ErrorIs(err, types.ErrPoolHalted)

	suite.Require().NoError(suite.keeper.ResumePool(suite.ctx, id))
	suite.Require().ErrorIs(suite.keeper.ResumePool(suite.ctx, id), types.ErrInvalidState)

	_, err = suite.keeper.Swap(suite.ctx, id, 0, 1, e18(1), sdkmath.Uint{})
	suite.Require().NoError(err)
}

func (suite *KeeperTestSuite) TestFatalErrorHaltsPool() {
	state := keepertest.SeededState(suite.T(), types.DefaultParams(), 3, 100)
	state.ID = 7
	// shares that the reserves cannot back
	state.TotalSupply = e18(1_000)
	suite.Require().NoError(keeper.SetPoolForTest(suite.keeper, state))

	_, err := suite.keeper.Swap(suite.ctx, 7, 0, 1, e18(1), sdkmath.Uint{})
	suite.Require().ErrorIs(err, types.ErrInvariantBroken)
	suite.Require().True(types.IsFatal(err))

	pool, err := suite.keeper.GetPool(suite.ctx, 7)
	suite.Require().NoError(err)
	suite.Require().True(pool.Halted)
	suite.Require().Contains(pool.HaltReason, "invariant broken")
	// the failed swap did not touch the reserves
	suite.Require().Equal(e18(100), pool.Basket.Assets[0].VaultBalance)

	_, err = suite.keeper.Mint(suite.ctx, 7, 0, e18(1), sdkmath.Uint{})
	suite.Require().ErrorIs(err, types.ErrPoolHalted)

	// a pool that is still insolvent cannot be resumed
	suite.Require().ErrorIs(suite.keeper.ResumePool(suite.ctx, 7), types.ErrInvalidState)

	suite.Require().ErrorIs(suite.keeper.Invariants(suite.ctx), types.ErrInvariantBroken)
}

func (suite *KeeperTestSuite) TestOversizedSwapKeepsPoolRunning() {
	id := keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ctx, nil, 3, 100)
	before, err := suite.keeper.GetPool(suite.ctx, id)
	suite.Require().NoError(err)

	_, err = suite.keeper.Swap(suite.ctx, id, 0, 1, e18(100_000), sdkmath.Uint{})
	suite.Require().ErrorIs(err, types.ErrExceedsWeightLimits)
	suite.Require().False(types.IsFatal(err))

	pool, err := suite.keeper.GetPool(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Require().False(pool.Halted)
	suite.Require().Equal(before, pool)

	_, err = suite.keeper.Mint(suite.ctx, id, 0, e18(1), sdkmath.Uint{})
	suite.Require().NoError(err)
}

func (suite *KeeperTestSuite) TestFatalErrorOnSolventPoolOnlyRejects() {
	id := keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ctx, nil, 3, 100)

	err := keeper.ExecuteForTest(suite.ctx, suite.keeper, id, func(types.PoolState) (types.PoolState, error) {
		return types.PoolState{}, types.ErrConvergence.Wrap("D after 256 iterations")
	})
	suite.Require().ErrorIs(err, types.ErrConvergence)

	pool, err := suite.keeper.GetPool(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Require().False(pool.Halted)
	suite.Require().Empty(pool.HaltReason)
	suite.Require().NoError(suite.keeper.Invariants(suite.ctx))
}

func (suite *KeeperTestSuite) TestLocksOnlyExistingPools() {
	id := keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ctx, nil, 3, 100)
	suite.Require().Equal(1, keeper.LockCount(suite.keeper))

	for _, missing := range []uint64{42, 43, 44} {
		_, err := suite.keeper.Swap(suite.ctx, missing, 0, 1, e18(1), sdkmath.Uint{})
		suite.Require().ErrorIs(err, types.ErrPoolNotFound)
		suite.Require().ErrorIs(suite.keeper.HaltPool(suite.ctx, missing, "x"), types.ErrPoolNotFound)
	}
	suite.Require().Equal(1, keeper.LockCount(suite.keeper))

	_, err := suite.keeper.Swap(suite.ctx, id, 0, 1, e18(1), sdkmath.Uint{})
	suite.Require().NoError(err)
	suite.Require().Equal(1, keeper.LockCount(suite.keeper))
}

func (suite *KeeperTestSuite) TestAssetStatusAndFailedBasket() {
	id := keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ctx, nil, 3, 100)

	suite.Require().NoError(suite.keeper.SetAssetStatus(suite.ctx, id, 2, types.StatusBlacklisted))
	suite.Require().ErrorIs(suite.keeper.SetAssetStatus(suite.ctx, id, 3, types.StatusNormal), types.ErrInvalidAsset)
	suite.Require().ErrorIs(suite.keeper.SetAssetStatus(suite.ctx, id, 0, types.AssetStatus(99)), types.ErrInvalidAsset)

	_, err := suite.keeper.Mint(suite.ctx, id, 0, e18(1), sdkmath.Uint{})
	suite.Require().ErrorIs(err, types.ErrInvalidAsset)
	_, err = suite.keeper.RedeemProportionally(suite.ctx, id, e18(3), nil)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.keeper.SetAssetStatus(suite.ctx, id, 2, types.StatusNormal))
	suite.Require().NoError(suite.keeper.SetBasketFailed(suite.ctx, id, true))
	_, err = suite.keeper.Swap(suite.ctx, id, 0, 1, e18(1), sdkmath.Uint{})
	suite.Require().ErrorIs(err, types.ErrBasketFailed)

	suite.Require().NoError(suite.keeper.SetBasketFailed(suite.ctx, id, false))
	_, err = suite.keeper.Swap(suite.ctx, id, 0, 1, e18(1), sdkmath.Uint{})
	suite.Require().NoError(err)
}

func (suite *KeeperTestSuite) TestCanceledContext() {
	id := keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ctx, nil, 3, 100)
	ctx, cancel := context.WithCancel(suite.ctx)
	cancel()

	_, err := suite.keeper.Mint(ctx, id, 0, e18(1), sdkmath.Uint{})
	suite.Require().ErrorIs(err, context.Canceled)
	_, err = suite.keeper.CreatePool(ctx, nil, keepertest.Assets(suite.T(), 18, 18))
	suite.Require().ErrorIs(err, context.Canceled)
}

func (suite *KeeperTestSuite) TestParams() {
	params, err := suite.keeper.GetParams()
	suite.Require().NoError(err)
	suite.Require().Equal(types.DefaultParams().String(), params.String())
	suite.Require().True(params.SwapFee.Equal(types.BasisPoints(6)))

	params.Amplification = 500
	suite.Require().NoError(suite.keeper.SetParams(params))
	pool, err := suite.keeper.CreatePool(suite.ctx, nil, keepertest.Assets(suite.T(), 18, 18))
	suite.Require().NoError(err)
	suite.Require().Equal(uint64(500), pool.Params.Amplification)

	params.Amplification = 0
	suite.Require().ErrorIs(suite.keeper.SetParams(params), types.ErrInvalidParams)
}

func TestConcurrentSwapsOnOnePool(t *testing.T) {
	k, ctx := keepertest.StableSwapKeeper(t)
	id := keepertest.CreateTestPool(t, k, ctx, nil, 3, 1_000)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in, out := i%3, (i+1)%3
			_, err := k.Swap(ctx, id, in, out, e18(1), sdkmath.Uint{})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	pool, err := k.GetPool(ctx, id)
	require.NoError(t, err)
	require.Equal(t, e18(3_000), pool.TotalSupply)
	require.False(t, pool.Surplus.IsZero())
	_, err = keeper.CheckInvariant(pool)
	require.NoError(t, err)
}
