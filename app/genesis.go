package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// ReadGenesisFile reads and validates a genesis file.
func ReadGenesisFile(path string) (*types.GenesisState, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis file: %w", err)
	}
	var gs types.GenesisState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return nil, fmt.Errorf("failed to decode genesis file: %w", err)
	}
	if err := gs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis file: %w", err)
	}
	return &gs, nil
}

// WriteGenesisFile writes gs as indented JSON.
func WriteGenesisFile(path string, gs *types.GenesisState) error {
	bz, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode genesis: %w", err)
	}
	if err := os.WriteFile(path, bz, 0o600); err != nil {
		return fmt.Errorf("failed to write genesis file: %w", err)
	}
	return nil
}
