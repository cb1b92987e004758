package types_test

import (
	"testing"

	errorsmod "cosmossdk.io/errors"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

func TestErrorCodes(t *testing.T) {
	all := []*errorsmod.Error{
		types.ErrDivisionByZero, types.ErrOverflow, types.ErrConvergence,
		types.ErrExceedsWeightLimits, types.ErrMustRedeemOverweight, types.ErrInvalidAsset,
		types.ErrInvalidPair, types.ErrZeroAmount, types.ErrInputTooSmall,
		types.ErrInvalidRecipient, types.ErrInsufficientLiquidity, types.ErrSlippage,
		types.ErrBasketFailed, types.ErrInputLengthMismatch, types.ErrInvariantBroken,
		types.ErrPoolNotFound, types.ErrPoolAlreadyExists, types.ErrPoolHalted,
		types.ErrInvalidParams, types.ErrInvalidState,
	}
	codes := make(map[uint32]string, len(all))
	for _, err := range all {
		require.Equal(t, types.ModuleName, err.Codespace())
		prev, dup := codes[err.ABCICode()]
		require.False(t, dup, "%q shares code %d with %q", err.Error(), err.ABCICode(), prev)
		codes[err.ABCICode()] = err.Error()
	}
	require.Equal(t, uint32(16), types.ErrInvalidRecipient.ABCICode())
}

func TestIsFatal(t *testing.T) {
	require.True(t, types.IsFatal(types.ErrInvariantBroken.Wrap("D below supply")))
	require.True(t, types.IsFatal(types.ErrConvergence.Wrap("D after 256 iterations")))

	for _, err := range []error{
		types.ErrExceedsWeightLimits, types.ErrInvalidPair, types.ErrInvalidRecipient,
		types.ErrSlippage, types.ErrPoolHalted, nil,
	} {
		require.False(t, types.IsFatal(err), "%v", err)
	}
}
