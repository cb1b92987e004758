package keeper

import (
	"context"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// SetPoolForTest writes a pool without any validation so tests can seed broken state.
func SetPoolForTest(k *Keeper, state types.PoolState) error {
	return k.setPools(state)
}

// ExecuteForTest runs fn through the keeper's locking and halting path.
func ExecuteForTest(ctx context.Context, k *Keeper, poolID uint64, fn func(types.PoolState) (types.PoolState, error)) error {
	return k.execute(ctx, poolID, "test", fn)
}

// LockCount returns the number of pool lock entries.
func LockCount(k *Keeper) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
