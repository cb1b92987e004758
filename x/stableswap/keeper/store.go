package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// GetPool returns a pool by ID
func (k *Keeper) GetPool(ctx context.Context, poolID uint64) (types.PoolState, error) {
	if err := ctx.Err(); err != nil {
		return types.PoolState{}, err
	}
	bz, err := k.db.Get(types.GetPoolKey(poolID))
	if err != nil {
		return types.PoolState{}, fmt.Errorf("GetPool: %w", err)
	}
	if bz == nil {
		return types.PoolState{}, types.ErrPoolNotFound.Wrapf("pool %d", poolID)
	}
	var state types.PoolState
	if err := json.Unmarshal(bz, &state); err != nil {
		return types.PoolState{}, types.ErrInvalidState.Wrapf("failed to unmarshal pool %d: %s", poolID, err)
	}
	return state, nil
}

// setPools stores pools in one atomic batch.
func (k *Keeper) setPools(states ...types.PoolState) error {
	batch := k.db.NewBatch()
	defer batch.Close()
	for _, state := range states {
		bz, err := json.Marshal(state)
		if err != nil {
			return types.ErrInvalidState.Wrapf("failed to marshal pool %d: %s", state.ID, err)
		}
		if err := batch.Set(types.GetPoolKey(state.ID), bz); err != nil {
			return fmt.Errorf("setPools: %w", err)
		}
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("setPools: %w", err)
	}
	return nil
}

// hasPool reports whether a pool is stored under poolID.
func (k *Keeper) hasPool(poolID uint64) (bool, error) {
	return k.db.Has(types.GetPoolKey(poolID))
}

// GetAllPools returns every stored pool ordered by ID.
func (k *Keeper) GetAllPools(ctx context.Context) ([]types.PoolState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	end := []byte{types.PoolKey[0] + 1}
	iter, err := k.db.Iterator(types.PoolKey, end)
	if err != nil {
		return nil, fmt.Errorf("GetAllPools: %w", err)
	}
	defer iter.Close()

	var pools []types.PoolState
	for ; iter.Valid(); iter.Next() {
		var state types.PoolState
		if err := json.Unmarshal(iter.Value(), &state); err != nil {
			return nil, types.ErrInvalidState.Wrapf("failed to unmarshal pool %d: %s", types.PoolIDFromKey(iter.Key()), err)
		}
		pools = append(pools, state)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("GetAllPools: %w", err)
	}
	return pools, nil
}

// getNextPoolID returns the ID the next created pool receives.
func (k *Keeper) getNextPoolID() (uint64, error) {
	bz, err := k.db.Get(types.PoolCountKey)
	if err != nil {
		return 0, fmt.Errorf("getNextPoolID: %w", err)
	}
	if bz == nil {
		return 1, nil
	}
	if len(bz) != 8 {
		return 0, types.ErrInvalidState.Wrap("corrupt pool counter")
	}
	return binary.BigEndian.Uint64(bz), nil
}

func (k *Keeper) setNextPoolID(id uint64) error {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, id)
	if err := k.db.Set(types.PoolCountKey, bz); err != nil {
		return fmt.Errorf("setNextPoolID: %w", err)
	}
	return nil
}

// GetParams returns the default params applied to new pools.
func (k *Keeper) GetParams() (types.Params, error) {
	bz, err := k.db.Get(types.ParamsKey)
	if err != nil {
		return types.Params{}, fmt.Errorf("GetParams: %w", err)
	}
	if bz == nil {
		return k.params, nil
	}
	var params types.Params
	if err := json.Unmarshal(bz, &params); err != nil {
		return types.Params{}, types.ErrInvalidParams.Wrapf("failed to unmarshal params: %s", err)
	}
	return params, nil
}

// SetParams validates and stores the default params applied to new pools.
func (k *Keeper) SetParams(params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	bz, err := json.Marshal(params)
	if err != nil {
		return types.ErrInvalidParams.Wrapf("failed to marshal params: %s", err)
	}
	if err := k.db.Set(types.ParamsKey, bz); err != nil {
		return fmt.Errorf("SetParams: %w", err)
	}
	return nil
}
