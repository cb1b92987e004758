package types

import (
	sdkmath "cosmossdk.io/math"
)

// Basket is the ordered list of assets backing a pool. Indices are stable for the
// lifetime of the pool.
type Basket struct {
	Assets    []Asset `json:"assets"`
	Failed    bool    `json:"failed"`
	MaxAssets uint32  `json:"max_assets"`
}

// HasUnhealthy reports whether any asset is not Normal.
func (b Basket) HasUnhealthy() bool {
	for _, a := range b.Assets {
		if !a.Status.IsHealthy() {
			return true
		}
	}
	return false
}

// ProportionalOnly reports whether only proportional redemption may run against the basket.
func (b Basket) ProportionalOnly() bool {
	return b.Failed || b.HasUnhealthy()
}

// Validate performs stateless checks on the basket.
func (b Basket) Validate() error {
	if len(b.Assets) < 2 {
		return ErrInvalidState.Wrapf("basket needs at least 2 assets, got %d", len(b.Assets))
	}
	if b.MaxAssets != 0 && uint32(len(b.Assets)) > b.MaxAssets {
		return ErrInvalidState.Wrapf("basket has %d assets, max %d", len(b.Assets), b.MaxAssets)
	}
	for i, a := range b.Assets {
		if err := a.Validate(); err != nil {
			return ErrInvalidState.Wrapf("asset %d: %s", i, err)
		}
	}
	return nil
}

// PoolState is the full mutable state of a pool. The invariant
// D(reserves) >= TotalSupply + Surplus holds after every operation.
type PoolState struct {
	ID          uint64       `json:"id"`
	Params      Params       `json:"params"`
	Basket      Basket       `json:"basket"`
	TotalSupply sdkmath.Uint `json:"total_supply"`
	Surplus     sdkmath.Uint `json:"surplus"`
	Halted      bool         `json:"halted"`
	HaltReason  string       `json:"halt_reason,omitempty"`
	// MainPoolID is set on feeder pools and names the pool whose shares are the mAsset.
	MainPoolID uint64 `json:"main_pool_id,omitempty"`
}

// NewPoolState returns an empty pool over the given assets.
func NewPoolState(id uint64, params Params, assets []Asset) PoolState {
	cp := make([]Asset, len(assets))
	copy(cp, assets)
	return PoolState{
		ID:          id,
		Params:      params,
		Basket:      Basket{Assets: cp, MaxAssets: params.MaxAssets},
		TotalSupply: sdkmath.ZeroUint(),
		Surplus:     sdkmath.ZeroUint(),
	}
}

// Clone returns a copy that shares no mutable memory with p.
func (p PoolState) Clone() PoolState {
	out := p
	out.Basket.Assets = make([]Asset, len(p.Basket.Assets))
	copy(out.Basket.Assets, p.Basket.Assets)
	return out
}

// IsFeeder reports whether p is a feeder pool.
func (p PoolState) IsFeeder() bool {
	return p.MainPoolID != 0
}

// FeederIndices returns the basket indices of the mAsset and the fAsset of a feeder pool.
func (p PoolState) FeederIndices() (masset, fasset int, err error) {
	masset, fasset = -1, -1
	for i, a := range p.Basket.Assets {
		switch a.Role {
		case RoleMasset:
			masset = i
		case RoleFasset:
			fasset = i
		}
	}
	if !p.IsFeeder() || masset < 0 || fasset < 0 {
		return -1, -1, ErrInvalidState.Wrapf("pool %d is not a feeder pool", p.ID)
	}
	return masset, fasset, nil
}

// SupplyWithSurplus returns TotalSupply + Surplus.
func (p PoolState) SupplyWithSurplus() sdkmath.Uint {
	return p.TotalSupply.Add(p.Surplus)
}

// Validate performs stateless checks on the pool.
func (p PoolState) Validate() error {
	if p.TotalSupply.IsNil() || p.Surplus.IsNil() {
		return ErrInvalidState.Wrapf("pool %d: supply or surplus is nil", p.ID)
	}
	if err := p.Params.Validate(); err != nil {
		return ErrInvalidState.Wrapf("pool %d: %s", p.ID, err)
	}
	if err := p.Basket.Validate(); err != nil {
		return err
	}
	return p.validateRoles()
}

// validateRoles checks that a main pool holds only bAssets and that a feeder pool holds
// exactly one mAsset and one fAsset.
func (p PoolState) validateRoles() error {
	counts := map[AssetRole]int{}
	for _, a := range p.Basket.Assets {
		counts[a.Role]++
	}
	if !p.IsFeeder() {
		if counts[RoleBasset] != len(p.Basket.Assets) {
			return ErrInvalidState.Wrapf("pool %d: main pools hold only bAssets", p.ID)
		}
		return nil
	}
	if p.MainPoolID == p.ID {
		return ErrInvalidState.Wrapf("pool %d cannot feed itself", p.ID)
	}
	if len(p.Basket.Assets) != 2 || counts[RoleMasset] != 1 || counts[RoleFasset] != 1 {
		return ErrInvalidState.Wrapf("feeder pool %d must hold one mAsset and one fAsset", p.ID)
	}
	return nil
}
