package engine

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/yfo/internal/transfer"
	"github.com/elys-network/yfo/internal/types"
)

// seedSplitPosition spreads alice across two farms: 50000 in a 1% farm and
// 100000 in a 9% farm, with zero platform fee so the numbers stay round.
func seedSplitPosition(t *testing.T) (*Engine, *transfer.Bank, types.FarmID, types.FarmID) {
	t.Helper()
	params := defaultTestParams()
	params.PlatformFeeBps = 0
	eng, bank, _ := newTestEngine(t, params)

	lowYield := addTestFarm(t, eng, 100, testNetwork)
	highYield := addTestFarm(t, eng, 50, testNetwork)
	bank.Credit(testAsset, "alice", sdkmath.NewInt(150_000))

	// First deposit routes to the 1% farm while it leads.
	require.NoError(t, eng.DepositAndRoute("alice", testAsset, sdkmath.NewInt(50_000)))
	// Raise the second farm to 9% so the rest routes there.
	require.NoError(t, eng.UpdateFarmApy(testOwner, highYield, 900))
	require.NoError(t, eng.DepositAndRoute("alice", testAsset, sdkmath.NewInt(100_000)))

	require.Equal(t, sdkmath.NewInt(50_000), eng.balance("alice", lowYield))
	require.Equal(t, sdkmath.NewInt(100_000), eng.balance("alice", highYield))
	return eng, bank, lowYield, highYield
}

func TestOptimizedWithdraw_DrainsLowYieldFirst(t *testing.T) {
	eng, bank, lowYield, highYield := seedSplitPosition(t)

	require.NoError(t, eng.OptimizedWithdraw("alice", sdkmath.NewInt(80_000)))

	// The 1% farm is emptied before the 9% farm is touched.
	assert.True(t, eng.balance("alice", lowYield).IsZero())
	assert.Equal(t, sdkmath.NewInt(70_000), eng.balance("alice", highYield))
	assert.Equal(t, sdkmath.NewInt(70_000), eng.Position("alice").TotalDeposited)
	assert.Equal(t, sdkmath.NewInt(70_000), eng.TotalValueLocked())
	assert.Equal(t, sdkmath.NewInt(80_000), bank.Balance(testAsset, "alice"))
	assertLedgerInvariants(t, eng)
}

func TestOptimizedWithdraw_BooksEstimatedEarnings(t *testing.T) {
	eng, _, _, _ := seedSplitPosition(t)

	require.NoError(t, eng.OptimizedWithdraw("alice", sdkmath.NewInt(10_000)))

	// Flat one-period estimate over pre-drain balances:
	// 50000*100/10000 + 100000*900/10000 = 500 + 9000.
	assert.Equal(t, sdkmath.NewInt(9_500), eng.Position("alice").TotalEarned)
}

func TestOptimizedWithdraw_PartialDrainWithinOneFarm(t *testing.T) {
	eng, _, lowYield, highYield := seedSplitPosition(t)

	require.NoError(t, eng.OptimizedWithdraw("alice", sdkmath.NewInt(20_000)))

	assert.Equal(t, sdkmath.NewInt(30_000), eng.balance("alice", lowYield))
	assert.Equal(t, sdkmath.NewInt(100_000), eng.balance("alice", highYield))
	assertLedgerInvariants(t, eng)
}

func TestOptimizedWithdraw_InsufficientBalance(t *testing.T) {
	eng, _, _, _ := seedSplitPosition(t)

	err := eng.OptimizedWithdraw("alice", sdkmath.NewInt(150_001))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assert.ErrorIs(t, eng.OptimizedWithdraw("nobody", sdkmath.NewInt(1)), ErrInsufficientBalance)
}

func TestOptimizedWithdraw_RejectsInvalidInput(t *testing.T) {
	eng, _, _, _ := seedSplitPosition(t)

	assert.ErrorIs(t, eng.OptimizedWithdraw("", sdkmath.NewInt(100)), ErrInvalidInput)
	assert.ErrorIs(t, eng.OptimizedWithdraw("alice", sdkmath.ZeroInt()), ErrInvalidInput)
	assert.ErrorIs(t, eng.OptimizedWithdraw("alice", sdkmath.Int{}), ErrInvalidInput)
}

func TestOptimizedWithdraw_TransferFailureLeavesStateUntouched(t *testing.T) {
	eng, bank, lowYield, highYield := seedSplitPosition(t)
	bank.FailNextTransferOut(1)

	err := eng.OptimizedWithdraw("alice", sdkmath.NewInt(80_000))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransferFailed)

	assert.Equal(t, sdkmath.NewInt(50_000), eng.balance("alice", lowYield))
	assert.Equal(t, sdkmath.NewInt(100_000), eng.balance("alice", highYield))
	assert.Equal(t, sdkmath.NewInt(150_000), eng.Position("alice").TotalDeposited)
	assert.True(t, eng.Position("alice").TotalEarned.IsZero())
	assertLedgerInvariants(t, eng)
}

func TestOptimizedWithdraw_ShortfallAbsorbedIntoTotal(t *testing.T) {
	params := defaultTestParams()
	params.PlatformFeeBps = 0
	eng, bank, _ := newTestEngine(t, params)
	addTestFarm(t, eng, 500, testNetwork)
	bank.Credit(testAsset, "alice", sdkmath.NewInt(10_000))
	require.NoError(t, eng.DepositAndRoute("alice", testAsset, sdkmath.NewInt(10_000)))

	// Force invariant drift: the recorded total claims more than the farm
	// balances hold. The payout needs pool funds beyond the deposit.
	eng.positions["alice"].TotalDeposited = sdkmath.NewInt(15_000)
	bank.Credit(testAsset, "@pool", sdkmath.NewInt(5_000))

	require.NoError(t, eng.OptimizedWithdraw("alice", sdkmath.NewInt(12_000)))

	// 10000 came from the farm, the 2000 remainder was absorbed:
	// 15000 - 10000 - 2000 = 3000.
	assert.Equal(t, sdkmath.NewInt(3_000), eng.Position("alice").TotalDeposited)
	assert.Equal(t, sdkmath.NewInt(12_000), bank.Balance(testAsset, "alice"))
}

func TestOptimizedWithdraw_ShortfallFloorsAtZero(t *testing.T) {
	params := defaultTestParams()
	params.PlatformFeeBps = 0
	eng, bank, _ := newTestEngine(t, params)
	farmID := addTestFarm(t, eng, 500, testNetwork)
	bank.Credit(testAsset, "alice", sdkmath.NewInt(10_000))
	require.NoError(t, eng.DepositAndRoute("alice", testAsset, sdkmath.NewInt(10_000)))

	// Drift the other way: balances below the recorded total.
	eng.setBalance("alice", farmID, sdkmath.NewInt(2_000))
	eng.farms[farmID].Tvl = sdkmath.NewInt(2_000)

	require.NoError(t, eng.OptimizedWithdraw("alice", sdkmath.NewInt(10_000)))

	// 2000 drained, 8000 absorbed; the total never goes negative.
	assert.True(t, eng.Position("alice").TotalDeposited.IsZero())
}
