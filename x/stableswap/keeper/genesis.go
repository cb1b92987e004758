package keeper

import (
	"context"
	"fmt"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// InitGenesis initializes the stableswap module's state from a provided genesis state.
func (k *Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := genState.Validate(); err != nil {
		return fmt.Errorf("invalid genesis state: %w", err)
	}
	if err := k.SetParams(genState.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	for _, pool := range genState.Pools {
		if exists, err := k.hasPool(pool.ID); err != nil {
			return fmt.Errorf("InitGenesis: %w", err)
		} else if exists {
			return types.ErrPoolAlreadyExists.Wrapf("pool %d", pool.ID)
		}
		if !pool.Basket.ProportionalOnly() {
			if _, err := CheckInvariant(pool); err != nil {
				return fmt.Errorf("pool %d: %w", pool.ID, err)
			}
		}
		if err := k.setPools(pool); err != nil {
			return fmt.Errorf("failed to set pool %d: %w", pool.ID, err)
		}
		k.metrics.recordPool(pool)
	}
	if err := k.setNextPoolID(genState.NextPoolID); err != nil {
		return err
	}
	k.metrics.PoolsTotal.Set(float64(len(genState.Pools)))
	k.logger.Info("genesis initialized", "pools", len(genState.Pools), "next_pool_id", genState.NextPoolID)
	return nil
}

// ExportGenesis returns the stableswap module's exported genesis.
func (k *Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams()
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}
	pools, err := k.GetAllPools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pools: %w", err)
	}
	if pools == nil {
		pools = []types.PoolState{}
	}
	nextID, err := k.getNextPoolID()
	if err != nil {
		return nil, err
	}
	return &types.GenesisState{
		Params:     params,
		Pools:      pools,
		NextPoolID: nextID,
	}, nil
}
