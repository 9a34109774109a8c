package engine

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/yfo/internal/transfer"
	"github.com/elys-network/yfo/internal/types"
)

const remoteNetwork = types.NetworkID(2)

// seedCrossChainFixture funds alice with 100000 in the home farm and
// registers a remote farm plus a bridge with a 1000 fee.
func seedCrossChainFixture(t *testing.T) (*Engine, *transfer.Bank, types.FarmID, types.FarmID) {
	t.Helper()
	params := defaultTestParams()
	params.PlatformFeeBps = 0
	eng, bank, _ := newTestEngine(t, params)

	home := addTestFarm(t, eng, 900, testNetwork)
	remote := addTestFarm(t, eng, 500, remoteNetwork)
	_, err := eng.AddBridge(testOwner, "bridge-to-2", remoteNetwork, sdkmath.NewInt(1_000))
	require.NoError(t, err)

	bank.Credit(testAsset, "alice", sdkmath.NewInt(100_000))
	require.NoError(t, eng.DepositAndRoute("alice", testAsset, sdkmath.NewInt(100_000)))
	require.Equal(t, sdkmath.NewInt(100_000), eng.balance("alice", home))
	return eng, bank, home, remote
}

func TestCrossChainOptimize_MovesNetAmountToRemoteFarm(t *testing.T) {
	eng, _, home, remote := seedCrossChainFixture(t)

	require.NoError(t, eng.CrossChainOptimize("alice", remoteNetwork, sdkmath.NewInt(40_000)))

	assert.Equal(t, sdkmath.NewInt(60_000), eng.balance("alice", home))
	assert.Equal(t, sdkmath.NewInt(39_000), eng.balance("alice", remote))
	// The user's recorded total drops by exactly the bridge fee.
	assert.Equal(t, sdkmath.NewInt(99_000), eng.Position("alice").TotalDeposited)
	assert.Equal(t, sdkmath.NewInt(60_000), eng.farms[home].Tvl)
	assert.Equal(t, sdkmath.NewInt(39_000), eng.farms[remote].Tvl)
	assertLedgerInvariants(t, eng)
}

// The drain debits the global accumulator by the full amount but the arrival
// never credits it back. This asymmetry is load-bearing for downstream
// accounting and must not be "fixed" silently.
func TestCrossChainOptimize_GlobalTVLNotRecredited(t *testing.T) {
	eng, _, _, _ := seedCrossChainFixture(t)

	require.NoError(t, eng.CrossChainOptimize("alice", remoteNetwork, sdkmath.NewInt(40_000)))

	assert.Equal(t, sdkmath.NewInt(60_000), eng.TotalValueLocked())
}

func TestCrossChainOptimize_SameNetworkIsInvalid(t *testing.T) {
	eng, _, _, _ := seedCrossChainFixture(t)

	err := eng.CrossChainOptimize("alice", testNetwork, sdkmath.NewInt(10_000))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCrossChainOptimize_InsufficientBalance(t *testing.T) {
	eng, _, _, _ := seedCrossChainFixture(t)

	err := eng.CrossChainOptimize("alice", remoteNetwork, sdkmath.NewInt(100_001))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	err = eng.CrossChainOptimize("nobody", remoteNetwork, sdkmath.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestCrossChainOptimize_NoEligibleFarmOnNetwork(t *testing.T) {
	eng, _, _, remote := seedCrossChainFixture(t)
	require.NoError(t, eng.DeactivateFarm(testOwner, remote))

	err := eng.CrossChainOptimize("alice", remoteNetwork, sdkmath.NewInt(10_000))
	assert.ErrorIs(t, err, ErrNoEligibleFarmOnNetwork)
}

func TestCrossChainOptimize_NoActiveBridge(t *testing.T) {
	eng, _, _, _ := seedCrossChainFixture(t)
	require.NoError(t, eng.DeactivateBridge(testOwner, 0))

	err := eng.CrossChainOptimize("alice", remoteNetwork, sdkmath.NewInt(10_000))
	assert.ErrorIs(t, err, ErrNoActiveBridge)
}

func TestCrossChainOptimize_AmountMustExceedBridgeFee(t *testing.T) {
	eng, _, _, _ := seedCrossChainFixture(t)

	// Equal to the fee is rejected; nothing would arrive.
	err := eng.CrossChainOptimize("alice", remoteNetwork, sdkmath.NewInt(1_000))
	assert.ErrorIs(t, err, ErrAmountBelowBridgeFee)

	err = eng.CrossChainOptimize("alice", remoteNetwork, sdkmath.NewInt(999))
	assert.ErrorIs(t, err, ErrAmountBelowBridgeFee)

	assert.NoError(t, eng.CrossChainOptimize("alice", remoteNetwork, sdkmath.NewInt(1_001)))
}

func TestCrossChainOptimize_PicksBestFarmOnTargetNetwork(t *testing.T) {
	eng, _, _, _ := seedCrossChainFixture(t)
	better := addTestFarm(t, eng, 950, remoteNetwork)

	require.NoError(t, eng.CrossChainOptimize("alice", remoteNetwork, sdkmath.NewInt(20_000)))

	assert.Equal(t, sdkmath.NewInt(19_000), eng.balance("alice", better))
}

func TestCrossChainOptimize_DrainsLowYieldFirstAcrossFarms(t *testing.T) {
	eng, _, home, remote := seedCrossChainFixture(t)

	// Split the position: move 30000 (29000 net) to the remote 5% farm, then
	// pull 50000 back toward a third network. The 5% remote farm drains
	// before the 9% home farm.
	third := addTestFarm(t, eng, 400, types.NetworkID(3))
	_, err := eng.AddBridge(testOwner, "bridge-to-3", 3, sdkmath.NewInt(500))
	require.NoError(t, err)
	require.NoError(t, eng.CrossChainOptimize("alice", remoteNetwork, sdkmath.NewInt(30_000)))

	require.NoError(t, eng.CrossChainOptimize("alice", 3, sdkmath.NewInt(50_000)))

	assert.True(t, eng.balance("alice", remote).IsZero())
	assert.Equal(t, sdkmath.NewInt(49_000), eng.balance("alice", home))
	assert.Equal(t, sdkmath.NewInt(49_500), eng.balance("alice", third))
	assertLedgerInvariants(t, eng)
}
