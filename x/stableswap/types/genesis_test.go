package types_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

func TestGenesisStateValidate(t *testing.T) {
	dai, err := types.NewAsset(18, sdkmath.ZeroUint())
	require.NoError(t, err)
	pool := types.NewPoolState(1, types.DefaultParams(), []types.Asset{dai, dai})
	feeder := feederState(t, 2, 1)

	tests := []struct {
		name     string
		genState *types.GenesisState
		valid    bool
	}{
		{
			name:     "default is valid",
			genState: types.DefaultGenesis(),
			valid:    true,
		},
		{
			name: "valid genesis state",
			genState: &types.GenesisState{
				Params:     types.DefaultParams(),
				Pools:      []types.PoolState{pool},
				NextPoolID: 2,
			},
			valid: true,
		},
		{
			name: "zero next pool id",
			genState: &types.GenesisState{
				Params: types.DefaultParams(),
			},
			valid: false,
		},
		{
			name: "pool id not below next pool id",
			genState: &types.GenesisState{
				Params:     types.DefaultParams(),
				Pools:      []types.PoolState{pool},
				NextPoolID: 1,
			},
			valid: false,
		},
		{
			name: "duplicate pool",
			genState: &types.GenesisState{
				Params:     types.DefaultParams(),
				Pools:      []types.PoolState{pool, pool},
				NextPoolID: 2,
			},
			valid: false,
		},
		{
			name: "feeder with its main pool",
			genState: &types.GenesisState{
				Params:     types.DefaultParams(),
				Pools:      []types.PoolState{pool, feeder},
				NextPoolID: 3,
			},
			valid: true,
		},
		{
			name: "feeder without its main pool",
			genState: &types.GenesisState{
				Params:     types.DefaultParams(),
				Pools:      []types.PoolState{feeder},
				NextPoolID: 3,
			},
			valid: false,
		},
		{
			name: "feeder backed by a feeder",
			genState: &types.GenesisState{
				Params:     types.DefaultParams(),
				Pools:      []types.PoolState{pool, feeder, feederState(t, 3, 2)},
				NextPoolID: 4,
			},
			valid: false,
		},
		{
			name: "invalid pool",
			genState: &types.GenesisState{
				Params:     types.DefaultParams(),
				Pools:      []types.PoolState{{ID: 1, Params: types.DefaultParams()}},
				NextPoolID: 2,
			},
			valid: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.genState.Validate()
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
