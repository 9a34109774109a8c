package engine

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/yfo/internal/types"
)

func TestAddFarm_AssignsSequentialIDs(t *testing.T) {
	eng, _, _ := newTestEngine(t, defaultTestParams())

	first := addTestFarm(t, eng, 500, testNetwork)
	second := addTestFarm(t, eng, 700, testNetwork)

	assert.Equal(t, types.FarmID(0), first)
	assert.Equal(t, types.FarmID(1), second)

	farms := eng.Farms()
	require.Len(t, farms, 2)
	assert.True(t, farms[0].Active)
	assert.True(t, farms[0].Tvl.IsZero())
	assert.Equal(t, int64(700), farms[1].ApyBps)
}

func TestAddFarm_Validation(t *testing.T) {
	eng, _, _ := newTestEngine(t, defaultTestParams())

	_, err := eng.AddFarm("mallory", "farm-x", 500, testNetwork)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = eng.AddFarm(testOwner, "", 500, testNetwork)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = eng.AddFarm(testOwner, "farm-x", -1, testNetwork)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateFarmApy_StrictGate(t *testing.T) {
	eng, _, clock := newTestEngine(t, defaultTestParams())
	farmID := addTestFarm(t, eng, 500, testNetwork)
	clock.Advance(1)

	require.NoError(t, eng.UpdateFarmApy(testOwner, farmID, 800))
	assert.Equal(t, int64(800), eng.farms[farmID].ApyBps)
	assert.Equal(t, clock.Now(), eng.farms[farmID].LastUpdated)

	// Out-of-range id.
	assert.ErrorIs(t, eng.UpdateFarmApy(testOwner, 99, 800), ErrUnknownFarm)

	// Unlike deactivation, updating an inactive farm is rejected.
	require.NoError(t, eng.DeactivateFarm(testOwner, farmID))
	assert.ErrorIs(t, eng.UpdateFarmApy(testOwner, farmID, 900), ErrUnknownFarm)

	assert.ErrorIs(t, eng.UpdateFarmApy("mallory", farmID, 900), ErrUnauthorized)
	assert.ErrorIs(t, eng.UpdateFarmApy(testOwner, farmID, -1), ErrInvalidInput)
}

func TestDeactivateFarm_Idempotent(t *testing.T) {
	eng, _, _ := newTestEngine(t, defaultTestParams())
	farmID := addTestFarm(t, eng, 500, testNetwork)

	require.NoError(t, eng.DeactivateFarm(testOwner, farmID))
	assert.False(t, eng.farms[farmID].Active)

	// Second deactivation is a no-op, not an error.
	assert.NoError(t, eng.DeactivateFarm(testOwner, farmID))

	require.NoError(t, eng.ReactivateFarm(testOwner, farmID))
	assert.True(t, eng.farms[farmID].Active)
	assert.NoError(t, eng.ReactivateFarm(testOwner, farmID))

	assert.ErrorIs(t, eng.DeactivateFarm(testOwner, 99), ErrUnknownFarm)
	assert.ErrorIs(t, eng.DeactivateFarm("mallory", farmID), ErrUnauthorized)
}

func TestAddBridge_Validation(t *testing.T) {
	eng, _, _ := newTestEngine(t, defaultTestParams())

	bridgeID, err := eng.AddBridge(testOwner, "bridge-a", 2, sdkmath.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, types.BridgeID(0), bridgeID)

	// Zero fee is allowed; nil or negative is not.
	_, err = eng.AddBridge(testOwner, "bridge-b", 2, sdkmath.ZeroInt())
	assert.NoError(t, err)

	_, err = eng.AddBridge(testOwner, "bridge-c", 2, sdkmath.Int{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = eng.AddBridge(testOwner, "bridge-c", 2, sdkmath.NewInt(-1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = eng.AddBridge(testOwner, "", 2, sdkmath.NewInt(100))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = eng.AddBridge("mallory", "bridge-c", 2, sdkmath.NewInt(100))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDeactivateBridge(t *testing.T) {
	eng, _, _ := newTestEngine(t, defaultTestParams())
	bridgeID, err := eng.AddBridge(testOwner, "bridge-a", 2, sdkmath.NewInt(100))
	require.NoError(t, err)

	require.NoError(t, eng.DeactivateBridge(testOwner, bridgeID))
	assert.False(t, eng.bridges[bridgeID].Active)

	assert.ErrorIs(t, eng.DeactivateBridge(testOwner, 99), ErrUnknownBridge)
	assert.ErrorIs(t, eng.DeactivateBridge("mallory", bridgeID), ErrUnauthorized)
}

func TestSetPlatformFee_EnforcesCap(t *testing.T) {
	eng, _, _ := newTestEngine(t, defaultTestParams())

	require.NoError(t, eng.SetPlatformFee(testOwner, 1_000))
	assert.Equal(t, int64(1_000), eng.Params().PlatformFeeBps)

	assert.ErrorIs(t, eng.SetPlatformFee(testOwner, 1_001), ErrInvalidInput)
	assert.ErrorIs(t, eng.SetPlatformFee(testOwner, -1), ErrInvalidInput)
	assert.ErrorIs(t, eng.SetPlatformFee("mallory", 100), ErrUnauthorized)
}

func TestSetRebalanceThreshold(t *testing.T) {
	eng, _, _ := newTestEngine(t, defaultTestParams())

	require.NoError(t, eng.SetRebalanceThreshold(testOwner, 0))
	assert.Equal(t, int64(0), eng.Params().RebalanceThresholdBps)

	assert.ErrorIs(t, eng.SetRebalanceThreshold(testOwner, -1), ErrInvalidInput)
	assert.ErrorIs(t, eng.SetRebalanceThreshold("mallory", 100), ErrUnauthorized)
}

func TestSetAutoRebalanceEnabled(t *testing.T) {
	eng, _, _ := newTestEngine(t, defaultTestParams())

	require.NoError(t, eng.SetAutoRebalanceEnabled(testOwner, false))
	assert.False(t, eng.Params().AutoRebalanceEnabled)

	assert.ErrorIs(t, eng.SetAutoRebalanceEnabled("mallory", true), ErrUnauthorized)
}

func TestDeactivatedFarmKeepsTVLAndBalances(t *testing.T) {
	eng, bank, _ := newTestEngine(t, defaultTestParams())
	farmID := addTestFarm(t, eng, 500, testNetwork)
	bank.Credit(testAsset, "alice", sdkmath.NewInt(10_000))
	require.NoError(t, eng.DepositAndRoute("alice", testAsset, sdkmath.NewInt(10_000)))

	require.NoError(t, eng.DeactivateFarm(testOwner, farmID))

	// Retirement only blocks new allocation; existing funds stay put and
	// remain withdrawable.
	assert.Equal(t, sdkmath.NewInt(9_950), eng.farms[farmID].Tvl)
	require.NoError(t, eng.OptimizedWithdraw("alice", sdkmath.NewInt(9_950)))
	assert.True(t, eng.Position("alice").TotalDeposited.IsZero())
}
