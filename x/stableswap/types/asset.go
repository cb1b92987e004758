package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// RatioScale is the precision of an asset ratio (1e8).
const RatioScale = 100_000_000

// CanonicalDecimals is the number of decimals used for canonical pool units.
const CanonicalDecimals = 18

// AssetStatus describes the health of a basket asset.
type AssetStatus uint8

const (
	StatusNormal AssetStatus = iota
	StatusBrokenBelowPeg
	StatusBrokenAbovePeg
	StatusBlacklisted
	StatusLiquidating
	StatusLiquidated
	StatusFailed
)

// String implements fmt.Stringer.
func (s AssetStatus) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusBrokenBelowPeg:
		return "broken_below_peg"
	case StatusBrokenAbovePeg:
		return "broken_above_peg"
	case StatusBlacklisted:
		return "blacklisted"
	case StatusLiquidating:
		return "liquidating"
	case StatusLiquidated:
		return "liquidated"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseAssetStatus parses the String form of a status.
func ParseAssetStatus(s string) (AssetStatus, error) {
	for st := StatusNormal; st <= StatusFailed; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, ErrInvalidAsset.Wrapf("unknown status %q", s)
}

// IsHealthy reports whether the asset may take part in mint, swap and weighted redemption.
func (s AssetStatus) IsHealthy() bool {
	switch s {
	case StatusNormal:
		return true
	case StatusBrokenBelowPeg, StatusBrokenAbovePeg, StatusBlacklisted,
		StatusLiquidating, StatusLiquidated, StatusFailed:
		return false
	default:
		return false
	}
}

// Valid reports whether s is a known status.
func (s AssetStatus) Valid() bool {
	return s <= StatusFailed
}

// AssetRole is the part an asset plays in its pool.
type AssetRole uint8

const (
	// RoleBasset is an ordinary basket asset of a main pool.
	RoleBasset AssetRole = iota
	// RoleMasset is the share token of a main pool, held as a reserve by a feeder pool.
	RoleMasset
	// RoleFasset is the asset a feeder pool pairs with the mAsset.
	RoleFasset
)

// String implements fmt.Stringer.
func (r AssetRole) String() string {
	switch r {
	case RoleBasset:
		return "basset"
	case RoleMasset:
		return "masset"
	case RoleFasset:
		return "fasset"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
}

// Valid reports whether r is a known role.
func (r AssetRole) Valid() bool {
	return r <= RoleFasset
}

// SwapEligible reports whether assets with roles a and b may be swapped against each other
// inside one pool. Basket assets of a main pool trade freely; a feeder pool only trades its
// mAsset against its fAsset.
func SwapEligible(a, b AssetRole) bool {
	switch {
	case a == RoleBasset && b == RoleBasset:
		return true
	case a == RoleMasset && b == RoleFasset, a == RoleFasset && b == RoleMasset:
		return true
	default:
		return false
	}
}

// Asset is a single basket asset (a bAsset). VaultBalance is held in the asset's native
// decimals; Ratio converts it to canonical 18 decimal units.
type Asset struct {
	Ratio        sdkmath.Uint `json:"ratio"`
	VaultBalance sdkmath.Uint `json:"vault_balance"`
	Status       AssetStatus  `json:"status"`
	Role         AssetRole    `json:"role,omitempty"`
}

// NewAsset returns a Normal asset with the ratio for the given native decimals.
func NewAsset(decimals uint32, vaultBalance sdkmath.Uint) (Asset, error) {
	ratio, err := RatioForDecimals(decimals)
	if err != nil {
		return Asset{}, err
	}
	return Asset{Ratio: ratio, VaultBalance: vaultBalance, Status: StatusNormal}, nil
}

// RatioForDecimals returns RatioScale * 10^(18-decimals).
func RatioForDecimals(decimals uint32) (sdkmath.Uint, error) {
	if decimals > CanonicalDecimals {
		return sdkmath.Uint{}, ErrInvalidAsset.Wrapf("decimals %d exceed %d", decimals, CanonicalDecimals)
	}
	ratio := sdkmath.NewUint(RatioScale)
	for i := decimals; i < CanonicalDecimals; i++ {
		ratio = ratio.MulUint64(10)
	}
	return ratio, nil
}

// Validate performs stateless checks on the asset.
func (a Asset) Validate() error {
	if a.Ratio.IsNil() || a.Ratio.IsZero() {
		return ErrInvalidAsset.Wrap("ratio must be positive")
	}
	if a.VaultBalance.IsNil() {
		return ErrInvalidAsset.Wrap("vault balance is nil")
	}
	if !a.Status.Valid() {
		return ErrInvalidAsset.Wrapf("unknown status %d", a.Status)
	}
	if !a.Role.Valid() {
		return ErrInvalidAsset.Wrapf("unknown role %d", a.Role)
	}
	return nil
}
