package engine

import (
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yfo/internal/allocator"
	"github.com/elys-network/yfo/internal/types"
)

// CrossChainOptimize moves part of a user's capital to the best farm on a
// different network, net of the bridge fee. Physical transport is delegated
// to the bridge collaborator and never executed here; only the fee and
// route validity are consulted.
//
// Accounting note: the drain debits farm TVLs and the global accumulator by
// the full amount, while the arrival credits only the target farm's TVL
// with the net amount. The bridge fee disappears from tracked TVL and the
// global accumulator is not re-credited. This asymmetry is deliberate and
// pinned by tests; changing it is a behavior change, not a cleanup.
func (e *Engine) CrossChainOptimize(user string, targetNetworkID types.NetworkID, amount sdkmath.Int) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if user == "" || amount.IsNil() || !amount.IsPositive() {
		return ErrInvalidInput
	}
	if targetNetworkID == e.homeNetworkID {
		return ErrInvalidInput
	}
	pos, ok := e.positions[user]
	if !ok || amount.GT(pos.TotalDeposited) {
		return ErrInsufficientBalance
	}

	targetFarm, ok := allocator.SelectBestFarmOnNetwork(e.farms, targetNetworkID)
	if !ok {
		return ErrNoEligibleFarmOnNetwork
	}
	bridgeID, ok := allocator.SelectBridgeForNetwork(e.bridges, targetNetworkID)
	if !ok {
		return ErrNoActiveBridge
	}
	fee := e.bridges[bridgeID].Fee
	if !amount.GT(fee) {
		return ErrAmountBelowBridgeFee
	}

	remaining := e.drainFromFarms(user, amount)
	e.absorbShortfall(user, remaining)

	net := amount.Sub(fee)
	e.recordDeposit(user, targetFarm, net)
	e.farms[targetFarm].Tvl = e.farms[targetFarm].Tvl.Add(net)

	e.emit(newOperationID(), types.Event{
		Type:            types.EventCrossNetwork,
		User:            user,
		FarmID:          targetFarm,
		SourceNetworkID: e.homeNetworkID,
		NetworkID:       targetNetworkID,
		Amount:          net,
		Fee:             fee,
	})
	e.logger.Info().
		Str("user", user).
		Uint64("targetNetworkID", uint64(targetNetworkID)).
		Uint64("targetFarmID", uint64(targetFarm)).
		Uint64("bridgeID", uint64(bridgeID)).
		Str("net", net.String()).
		Str("bridgeFee", fee.String()).
		Msg("Cross-network reallocation completed")
	return nil
}
