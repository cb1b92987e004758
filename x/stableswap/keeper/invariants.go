package keeper

import (
	"context"
	"fmt"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// Invariant checks a property of every stored pool and returns a report and whether the
// property is broken.
type Invariant func(ctx context.Context) (string, bool)

// InvariantRegistry collects named invariants.
type InvariantRegistry interface {
	RegisterRoute(moduleName, route string, invar Invariant)
}

// RegisterInvariants registers all stableswap invariants
func RegisterInvariants(ir InvariantRegistry, k *Keeper) {
	ir.RegisterRoute(types.ModuleName, "pool-solvency", PoolSolvencyInvariant(k))
	ir.RegisterRoute(types.ModuleName, "reserve-backing", ReserveBackingInvariant(k))
	ir.RegisterRoute(types.ModuleName, "pool-state", PoolStateInvariant(k))
}

// AllInvariants runs all invariants of the stableswap module
func AllInvariants(k *Keeper) Invariant {
	return func(ctx context.Context) (string, bool) {
		res, stop := PoolStateInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		res, stop = ReserveBackingInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		return PoolSolvencyInvariant(k)(ctx)
	}
}

// FormatInvariant returns a standardized invariant report.
func FormatInvariant(module, name, msg string) string {
	return fmt.Sprintf("%s: %s invariant\n%s\n", module, name, msg)
}

// PoolSolvencyInvariant checks D(reserves) >= totalSupply + surplus on every pool that still
// prices operations.
func PoolSolvencyInvariant(k *Keeper) Invariant {
	return func(ctx context.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		pools, err := k.GetAllPools(ctx)
		if err != nil {
			return FormatInvariant(types.ModuleName, "pool-solvency", err.Error()), true
		}
		for _, pool := range pools {
			if pool.Basket.ProportionalOnly() {
				continue
			}
			if _, err := CheckInvariant(pool); err != nil {
				count++
				msg += fmt.Sprintf("pool %d: %s\n", pool.ID, err)
			}
		}

		broken := count != 0
		return FormatInvariant(
			types.ModuleName, "pool-solvency",
			fmt.Sprintf("found %d insolvent pools\n%s", count, msg),
		), broken
	}
}

// ReserveBackingInvariant checks that outstanding shares are backed by a non-empty basket
// and that an empty pool carries no shares.
func ReserveBackingInvariant(k *Keeper) Invariant {
	return func(ctx context.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		pools, err := k.GetAllPools(ctx)
		if err != nil {
			return FormatInvariant(types.ModuleName, "reserve-backing", err.Error()), true
		}
		for _, pool := range pools {
			empty := true
			for _, a := range pool.Basket.Assets {
				if !a.VaultBalance.IsNil() && !a.VaultBalance.IsZero() {
					empty = false
					break
				}
			}
			claims := pool.SupplyWithSurplus()
			if empty && !claims.IsZero() {
				count++
				msg += fmt.Sprintf("pool %d: empty basket backs %s shares\n", pool.ID, claims)
			}
			if !empty && pool.TotalSupply.IsZero() && pool.Surplus.IsZero() {
				count++
				msg += fmt.Sprintf("pool %d: reserves held without any shares\n", pool.ID)
			}
		}

		broken := count != 0
		return FormatInvariant(
			types.ModuleName, "reserve-backing",
			fmt.Sprintf("found %d pools with unbacked shares\n%s", count, msg),
		), broken
	}
}

// PoolStateInvariant checks that every stored pool passes stateless validation.
func PoolStateInvariant(k *Keeper) Invariant {
	return func(ctx context.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		pools, err := k.GetAllPools(ctx)
		if err != nil {
			return FormatInvariant(types.ModuleName, "pool-state", err.Error()), true
		}
		for _, pool := range pools {
			if pool.ID == 0 {
				count++
				msg += "pool has zero ID\n"
			}
			if err := pool.Validate(); err != nil {
				count++
				msg += fmt.Sprintf("pool %d: %s\n", pool.ID, err)
			}
		}

		broken := count != 0
		return FormatInvariant(
			types.ModuleName, "pool-state",
			fmt.Sprintf("found %d invalid pools\n%s", count, msg),
		), broken
	}
}

// Invariants runs every invariant and returns ErrInvariantBroken with the first broken
// report.
func (k *Keeper) Invariants(ctx context.Context) error {
	msg, broken := AllInvariants(k)(ctx)
	if broken {
		k.logger.Error("invariant broken", "report", msg)
		return types.ErrInvariantBroken.Wrap(msg)
	}
	return nil
}
