package types

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
)

// Arithmetic and solver errors
var (
	ErrDivisionByZero = errorsmod.Register(ModuleName, 2, "division by zero")
	ErrOverflow       = errorsmod.Register(ModuleName, 3, "arithmetic overflow")
	ErrConvergence    = errorsmod.Register(ModuleName, 4, "invariant did not converge")
)

// Operation errors. These reject a single request and leave the pool untouched.
var (
	ErrExceedsWeightLimits   = errorsmod.Register(ModuleName, 10, "exceeds weight limits")
	ErrMustRedeemOverweight  = errorsmod.Register(ModuleName, 11, "must redeem overweight assets")
	ErrInvalidAsset          = errorsmod.Register(ModuleName, 12, "invalid asset")
	ErrInvalidPair           = errorsmod.Register(ModuleName, 13, "invalid pair")
	ErrZeroAmount            = errorsmod.Register(ModuleName, 14, "Qty==0")
	ErrInputTooSmall         = errorsmod.Register(ModuleName, 15, "must add > 1e6 units")
	// ErrInvalidRecipient is never raised by the engine, which does not see recipients. Hosts
	// that settle outputs to an account report a bad account with it.
	ErrInvalidRecipient      = errorsmod.Register(ModuleName, 16, "invalid recipient")
	ErrInsufficientLiquidity = errorsmod.Register(ModuleName, 17, "insufficient liquidity")
	ErrSlippage              = errorsmod.Register(ModuleName, 18, "slippage bound not met")
	ErrBasketFailed          = errorsmod.Register(ModuleName, 19, "basket has failed, only proportional redemption allowed")
	ErrInputLengthMismatch   = errorsmod.Register(ModuleName, 20, "input arrays must have the same length")
)

// Fatal errors. The host must stop operating the pool when it sees one of these.
var (
	ErrInvariantBroken = errorsmod.Register(ModuleName, 30, "invariant broken")
)

// Host errors
var (
	ErrPoolNotFound      = errorsmod.Register(ModuleName, 40, "pool not found")
	ErrPoolAlreadyExists = errorsmod.Register(ModuleName, 41, "pool already exists")
	ErrPoolHalted        = errorsmod.Register(ModuleName, 42, "pool is halted")
	ErrInvalidParams     = errorsmod.Register(ModuleName, 43, "invalid params")
	ErrInvalidState      = errorsmod.Register(ModuleName, 44, "invalid pool state")
)

// IsFatal reports whether err signals a defect in the pool's state or configuration
// rather than a bad request.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvariantBroken) || errors.Is(err, ErrConvergence)
}
