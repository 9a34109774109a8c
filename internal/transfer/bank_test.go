package transfer

import (
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const token = "uusdc"

func TestBank_TransferInMovesFundsToPool(t *testing.T) {
	bank := NewBank()
	bank.Credit(token, "alice", sdkmath.NewInt(1000))

	err := bank.TransferIn(token, "alice", sdkmath.NewInt(400))
	require.NoError(t, err)

	assert.Equal(t, sdkmath.NewInt(600), bank.Balance(token, "alice"))
	assert.Equal(t, sdkmath.NewInt(400), bank.PoolBalance(token))
}

func TestBank_TransferOutMovesFundsFromPool(t *testing.T) {
	bank := NewBank()
	bank.Credit(token, poolAccount, sdkmath.NewInt(1000))

	err := bank.TransferOut(token, "bob", sdkmath.NewInt(250))
	require.NoError(t, err)

	assert.Equal(t, sdkmath.NewInt(250), bank.Balance(token, "bob"))
	assert.Equal(t, sdkmath.NewInt(750), bank.PoolBalance(token))
}

func TestBank_InsufficientFunds(t *testing.T) {
	bank := NewBank()
	bank.Credit(token, "alice", sdkmath.NewInt(100))

	err := bank.TransferIn(token, "alice", sdkmath.NewInt(500))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransferFailed))
	assert.Equal(t, sdkmath.NewInt(100), bank.Balance(token, "alice"))
	assert.True(t, bank.PoolBalance(token).IsZero())
}

func TestBank_InjectedFailures(t *testing.T) {
	bank := NewBank()
	bank.Credit(token, "alice", sdkmath.NewInt(1000))
	bank.FailNextTransferIn(1)

	err := bank.TransferIn(token, "alice", sdkmath.NewInt(100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransferFailed))
	// Injected failure leaves balances untouched.
	assert.Equal(t, sdkmath.NewInt(1000), bank.Balance(token, "alice"))

	// Failure budget is consumed; the next transfer succeeds.
	err = bank.TransferIn(token, "alice", sdkmath.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(100), bank.PoolBalance(token))
}

func TestBank_RejectsNegativeAmount(t *testing.T) {
	bank := NewBank()
	bank.Credit(token, poolAccount, sdkmath.NewInt(100))

	err := bank.TransferOut(token, "bob", sdkmath.NewInt(-5))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransferFailed))
}
