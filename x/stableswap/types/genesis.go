package types

import (
	"fmt"
)

// GenesisState is the exported state of every pool together with the default params.
type GenesisState struct {
	Params     Params      `json:"params"`
	Pools      []PoolState `json:"pools"`
	NextPoolID uint64      `json:"next_pool_id"`
}

// DefaultGenesis returns the default genesis state.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:     DefaultParams(),
		Pools:      []PoolState{},
		NextPoolID: 1,
	}
}

// Validate ensures the genesis state is well-formed.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	if gs.NextPoolID == 0 {
		return fmt.Errorf("next pool id must be positive")
	}

	seen := make(map[uint64]struct{}, len(gs.Pools))
	mains := make(map[uint64]bool, len(gs.Pools))
	for _, pool := range gs.Pools {
		mains[pool.ID] = !pool.IsFeeder()
	}
	for _, pool := range gs.Pools {
		if pool.ID == 0 {
			return fmt.Errorf("pool id must be positive")
		}
		if pool.ID >= gs.NextPoolID {
			return fmt.Errorf("pool id %d must be below next pool id %d", pool.ID, gs.NextPoolID)
		}
		if _, ok := seen[pool.ID]; ok {
			return fmt.Errorf("duplicate pool id %d", pool.ID)
		}
		seen[pool.ID] = struct{}{}

		if err := pool.Validate(); err != nil {
			return err
		}
		if pool.IsFeeder() && !mains[pool.MainPoolID] {
			return fmt.Errorf("feeder pool %d: main pool %d is missing or is a feeder", pool.ID, pool.MainPoolID)
		}
	}
	return nil
}
