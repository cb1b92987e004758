package keeper

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

const tracerName = "github.com/paw-chain/stableswap/x/stableswap"

// Keeper of the stableswap store. Calls on the same pool are serialized; calls on
// different pools run in parallel.
type Keeper struct {
	db      dbm.DB
	logger  log.Logger
	params  types.Params
	metrics *StableSwapMetrics
	tracer  trace.Tracer

	// mu guards locks and pool ID allocation.
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewKeeper creates a new stableswap Keeper instance. params are the defaults applied to
// pools created without explicit params.
func NewKeeper(db dbm.DB, logger log.Logger, params types.Params) *Keeper {
	return &Keeper{
		db:      db,
		logger:  logger.With("module", "x/"+types.ModuleName),
		params:  params,
		metrics: NewStableSwapMetrics(),
		tracer:  otel.Tracer(tracerName),
		locks:   make(map[uint64]*sync.Mutex),
	}
}

// Logger returns the module logger.
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// lockPool takes the lock of an existing pool. Lock entries are only created for stored
// pools.
func (k *Keeper) lockPool(poolID uint64) (func(), error) {
	k.mu.Lock()
	l, ok := k.locks[poolID]
	if !ok {
		exists, err := k.hasPool(poolID)
		if err != nil {
			k.mu.Unlock()
			return nil, fmt.Errorf("lockPool: %w", err)
		}
		if !exists {
			k.mu.Unlock()
			return nil, types.ErrPoolNotFound.Wrapf("pool %d", poolID)
		}
		l = &sync.Mutex{}
		k.locks[poolID] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock, nil
}

// lockPools takes the locks of several pools in ascending ID order.
func (k *Keeper) lockPools(poolIDs []uint64) (func(), error) {
	ordered := append([]uint64(nil), poolIDs...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	unlocks := make([]func(), 0, len(ordered))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, id := range ordered {
		unlock, err := k.lockPool(id)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

// execute runs fn against the stored state of a pool and persists the state it returns.
func (k *Keeper) execute(ctx context.Context, poolID uint64, op string, fn func(types.PoolState) (types.PoolState, error)) error {
	return k.executeAll(ctx, []uint64{poolID}, op, func(states []types.PoolState) ([]types.PoolState, error) {
		next, err := fn(states[0])
		if err != nil {
			return nil, err
		}
		return []types.PoolState{next}, nil
	})
}

// executeAll runs fn against the stored states of several pools, in the order of poolIDs,
// and writes every returned state in one batch.
func (k *Keeper) executeAll(ctx context.Context, poolIDs []uint64, op string, fn func([]types.PoolState) ([]types.PoolState, error)) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	ids := make([]int64, len(poolIDs))
	for i, id := range poolIDs {
		ids[i] = int64(id)
	}
	ctx, span := k.tracer.Start(ctx, "stableswap."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int64Slice("pool.ids", ids)),
	)
	start := time.Now()
	defer func() {
		k.metrics.observe(op, start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	unlock, err := k.lockPools(poolIDs)
	if err != nil {
		return err
	}
	defer unlock()

	states := make([]types.PoolState, len(poolIDs))
	for i, id := range poolIDs {
		if states[i], err = k.GetPool(ctx, id); err != nil {
			return err
		}
	}
	next, err := fn(states)
	if err != nil {
		return k.haltIfBroken(states, op, err)
	}
	if err := k.setPools(next...); err != nil {
		return err
	}
	for _, state := range next {
		k.metrics.recordPool(state)
	}
	return nil
}

// haltIfBroken handles a failed operation. A fatal error halts the pools whose stored
// state breaks the invariant; raised against a solvent pool it only rejects the request.
func (k *Keeper) haltIfBroken(states []types.PoolState, op string, cause error) error {
	if !types.IsFatal(cause) {
		return cause
	}
	for _, state := range states {
		if _, stateErr := CheckInvariant(state); stateErr == nil {
			k.logger.Error("rejected operation", "pool_id", state.ID, "op", op, "error", cause)
			continue
		}
		if haltErr := k.halt(state, cause); haltErr != nil {
			return fmt.Errorf("%w; failed to halt pool: %w", cause, haltErr)
		}
	}
	return cause
}

func (k *Keeper) halt(state types.PoolState, cause error) error {
	state.Halted = true
	state.HaltReason = cause.Error()
	k.logger.Error("halting pool", "pool_id", state.ID, "error", cause)
	k.metrics.PoolHalts.WithLabelValues(strconv.FormatUint(state.ID, 10)).Inc()
	return k.setPools(state)
}

// CreatePool registers a new pool over assets with zero vault balances. Nil params select
// the stored default params.
func (k *Keeper) CreatePool(ctx context.Context, params *types.Params, assets []types.Asset) (types.PoolState, error) {
	return k.createPool(ctx, params, assets, 0)
}

// CreateFeederPool registers an empty feeder pool that pairs fAsset with the shares of
// mainPoolID.
func (k *Keeper) CreateFeederPool(ctx context.Context, mainPoolID uint64, params *types.Params, fAsset types.Asset) (types.PoolState, error) {
	main, err := k.GetPool(ctx, mainPoolID)
	if err != nil {
		return types.PoolState{}, err
	}
	if main.IsFeeder() {
		return types.PoolState{}, types.ErrInvalidAsset.Wrapf("pool %d is a feeder pool and cannot back another", mainPoolID)
	}
	mAsset, err := types.NewAsset(types.CanonicalDecimals, sdkmath.ZeroUint())
	if err != nil {
		return types.PoolState{}, err
	}
	mAsset.Role = types.RoleMasset
	fAsset.Role = types.RoleFasset
	return k.createPool(ctx, params, []types.Asset{mAsset, fAsset}, mainPoolID)
}

func (k *Keeper) createPool(ctx context.Context, params *types.Params, assets []types.Asset, mainPoolID uint64) (types.PoolState, error) {
	if err := ctx.Err(); err != nil {
		return types.PoolState{}, err
	}
	var p types.Params
	if params != nil {
		p = *params
	} else {
		stored, err := k.GetParams()
		if err != nil {
			return types.PoolState{}, err
		}
		p = stored
	}
	if err := p.Validate(); err != nil {
		return types.PoolState{}, err
	}
	for i, a := range assets {
		if !a.VaultBalance.IsNil() && !a.VaultBalance.IsZero() {
			return types.PoolState{}, types.ErrInvalidAsset.Wrapf("asset %d: pools start empty, seed them with a mint", i)
		}
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	id, err := k.getNextPoolID()
	if err != nil {
		return types.PoolState{}, err
	}
	if exists, err := k.hasPool(id); err != nil {
		return types.PoolState{}, fmt.Errorf("CreatePool: %w", err)
	} else if exists {
		return types.PoolState{}, types.ErrPoolAlreadyExists.Wrapf("pool %d", id)
	}

	state := types.NewPoolState(id, p, assets)
	state.MainPoolID = mainPoolID
	for i := range state.Basket.Assets {
		state.Basket.Assets[i].VaultBalance = sdkmath.ZeroUint()
	}
	if err := state.Validate(); err != nil {
		return types.PoolState{}, err
	}
	if err := k.setPools(state); err != nil {
		return types.PoolState{}, err
	}
	if err := k.setNextPoolID(id + 1); err != nil {
		return types.PoolState{}, err
	}
	k.metrics.PoolsTotal.Inc()
	k.logger.Info("pool created", "pool_id", id, "assets", len(assets), "main_pool_id", mainPoolID, "params", p.String())
	return state, nil
}

// Mint deposits rawInput of asset idx into a pool.
func (k *Keeper) Mint(ctx context.Context, poolID uint64, idx int, rawInput, minOutput sdkmath.Uint) (MintResult, error) {
	var res MintResult
	err := k.execute(ctx, poolID, "mint", func(state types.PoolState) (types.PoolState, error) {
		next, r, err := Mint(state, idx, rawInput, minOutput)
		res = r
		return next, err
	})
	if err != nil {
		return MintResult{}, err
	}
	k.metrics.recordFee(poolID, "mint", res.Penalty, !res.Penalty.IsZero())
	k.logger.Debug("minted", "pool_id", poolID, "asset", idx, "input", rawInput, "minted", res.Minted, "penalty", res.Penalty)
	return res, nil
}

// MintMulti deposits several assets into a pool at once.
func (k *Keeper) MintMulti(ctx context.Context, poolID uint64, indices []int, rawInputs []sdkmath.Uint, minOutput sdkmath.Uint) (MintResult, error) {
	var res MintResult
	err := k.execute(ctx, poolID, "mint_multi", func(state types.PoolState) (types.PoolState, error) {
		next, r, err := MintMulti(state, indices, rawInputs, minOutput)
		res = r
		return next, err
	})
	if err != nil {
		return MintResult{}, err
	}
	k.metrics.recordFee(poolID, "mint_multi", res.Penalty, !res.Penalty.IsZero())
	k.logger.Debug("minted", "pool_id", poolID, "assets", indices, "minted", res.Minted, "penalty", res.Penalty)
	return res, nil
}

// Swap exchanges rawInput of asset in for asset out.
func (k *Keeper) Swap(ctx context.Context, poolID uint64, in, out int, rawInput, minOutput sdkmath.Uint) (SwapResult, error) {
	var res SwapResult
	err := k.execute(ctx, poolID, "swap", func(state types.PoolState) (types.PoolState, error) {
		next, r, err := Swap(state, in, out, rawInput, minOutput)
		res = r
		return next, err
	})
	if err != nil {
		return SwapResult{}, err
	}
	k.metrics.recordFee(poolID, "swap", res.Fee.Total, !res.PenaltyRate.IsZero())
	k.logger.Debug("swapped", "pool_id", poolID, "in", in, "out", out, "input", rawInput, "output", res.Output, "fee", res.Fee.Total)
	return res, nil
}

// Redeem burns shares for asset idx.
func (k *Keeper) Redeem(ctx context.Context, poolID uint64, idx int, shares, minOutput sdkmath.Uint) (RedeemResult, error) {
	return k.redeem(ctx, poolID, "redeem", func(state types.PoolState) (types.PoolState, RedeemResult, error) {
		return Redeem(state, idx, shares, minOutput)
	})
}

// RedeemExact withdraws exact quantities of the given assets, burning at most maxShares.
func (k *Keeper) RedeemExact(ctx context.Context, poolID uint64, indices []int, rawOutputs []sdkmath.Uint, maxShares sdkmath.Uint) (RedeemResult, error) {
	return k.redeem(ctx, poolID, "redeem_exact", func(state types.PoolState) (types.PoolState, RedeemResult, error) {
		return RedeemExact(state, indices, rawOutputs, maxShares)
	})
}

// RedeemProportionally burns shares for a pro rata slice of every asset.
func (k *Keeper) RedeemProportionally(ctx context.Context, poolID uint64, shares sdkmath.Uint, minOutputs []sdkmath.Uint) (RedeemResult, error) {
	return k.redeem(ctx, poolID, "redeem_proportional", func(state types.PoolState) (types.PoolState, RedeemResult, error) {
		return RedeemProportionally(state, shares, minOutputs)
	})
}

func (k *Keeper) redeem(ctx context.Context, poolID uint64, op string, fn func(types.PoolState) (types.PoolState, RedeemResult, error)) (RedeemResult, error) {
	var res RedeemResult
	err := k.execute(ctx, poolID, op, func(state types.PoolState) (types.PoolState, error) {
		next, r, err := fn(state)
		res = r
		return next, err
	})
	if err != nil {
		return RedeemResult{}, err
	}
	k.metrics.recordFee(poolID, op, res.Fee.Total, !res.PenaltyRate.IsZero())
	k.logger.Debug("redeemed", "pool_id", poolID, "op", op, "burned", res.SharesBurned, "outputs", res.Outputs)
	return res, nil
}

// HaltPool stops every operation on a pool until it is resumed.
func (k *Keeper) HaltPool(ctx context.Context, poolID uint64, reason string) error {
	return k.execute(ctx, poolID, "halt", func(state types.PoolState) (types.PoolState, error) {
		if state.Halted {
			return types.PoolState{}, types.ErrPoolHalted.Wrapf("pool %d is already halted", poolID)
		}
		next := state.Clone()
		next.Halted = true
		next.HaltReason = reason
		k.logger.Info("pool halted", "pool_id", poolID, "reason", reason)
		return next, nil
	})
}

// ResumePool lifts a halt once the pool satisfies its invariant again.
func (k *Keeper) ResumePool(ctx context.Context, poolID uint64) error {
	return k.execute(ctx, poolID, "resume", func(state types.PoolState) (types.PoolState, error) {
		if !state.Halted {
			return types.PoolState{}, types.ErrInvalidState.Wrapf("pool %d is not halted", poolID)
		}
		next := state.Clone()
		next.Halted = false
		next.HaltReason = ""
		if !next.Basket.ProportionalOnly() {
			if _, err := CheckInvariant(next); err != nil {
				// a pool that is still broken stays halted
				return types.PoolState{}, types.ErrInvalidState.Wrapf("cannot resume pool %d: %s", poolID, err)
			}
		}
		k.logger.Info("pool resumed", "pool_id", poolID)
		return next, nil
	})
}

// SetAssetStatus records the health of a basket asset. Any status other than Normal limits
// the pool to proportional redemption.
func (k *Keeper) SetAssetStatus(ctx context.Context, poolID uint64, idx int, status types.AssetStatus) error {
	return k.execute(ctx, poolID, "set_asset_status", func(state types.PoolState) (types.PoolState, error) {
		if idx < 0 || idx >= len(state.Basket.Assets) {
			return types.PoolState{}, types.ErrInvalidAsset.Wrapf("index %d out of range", idx)
		}
		if !status.Valid() {
			return types.PoolState{}, types.ErrInvalidAsset.Wrapf("unknown status %d", status)
		}
		next := state.Clone()
		next.Basket.Assets[idx].Status = status
		k.logger.Info("asset status changed", "pool_id", poolID, "asset", idx, "status", status.String())
		return next, nil
	})
}

// SetBasketFailed marks the basket as failed or recovered.
func (k *Keeper) SetBasketFailed(ctx context.Context, poolID uint64, failed bool) error {
	return k.execute(ctx, poolID, "set_basket_failed", func(state types.PoolState) (types.PoolState, error) {
		next := state.Clone()
		next.Basket.Failed = failed
		k.logger.Info("basket failure flag changed", "pool_id", poolID, "failed", failed)
		return next, nil
	})
}
