/*

Administrative surface over the farm and bridge registries and the engine
parameters. All operations here are owner-gated. Farms and bridges are never
physically removed: ids are stable forever and retirement is a flag flip.

*/

package engine

import (
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yfo/internal/types"
)

// AddFarm appends a new farm to the registry and returns its id. The farm
// starts active with zero TVL.
func (e *Engine) AddFarm(caller, address string, apyBps int64, networkID types.NetworkID) (types.FarmID, error) {
	if err := e.begin(); err != nil {
		return 0, err
	}
	defer e.end()

	if caller != e.owner {
		return 0, ErrUnauthorized
	}
	if address == "" || apyBps < 0 {
		return 0, ErrInvalidInput
	}

	farmID := types.FarmID(len(e.farms))
	e.farms = append(e.farms, types.Farm{
		ID:          farmID,
		Address:     address,
		ApyBps:      apyBps,
		Tvl:         sdkmath.ZeroInt(),
		NetworkID:   networkID,
		Active:      true,
		LastUpdated: e.clock(),
	})

	e.emit(newOperationID(), types.Event{
		Type:      types.EventFarmAdded,
		FarmID:    farmID,
		NetworkID: networkID,
	})
	e.logger.Info().
		Uint64("farmID", uint64(farmID)).
		Str("address", address).
		Int64("apyBps", apyBps).
		Uint64("networkID", uint64(networkID)).
		Msg("Farm added")
	return farmID, nil
}

// UpdateFarmApy changes a farm's advertised yield. Unlike deactivation this
// keeps the strict validity gate: the id must be in range and the farm
// active.
func (e *Engine) UpdateFarmApy(caller string, farmID types.FarmID, apyBps int64) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if caller != e.owner {
		return ErrUnauthorized
	}
	if apyBps < 0 {
		return ErrInvalidInput
	}
	if int(farmID) >= len(e.farms) || !e.farms[farmID].Active {
		return ErrUnknownFarm
	}

	e.farms[farmID].ApyBps = apyBps
	e.farms[farmID].LastUpdated = e.clock()

	e.emit(newOperationID(), types.Event{
		Type:   types.EventFarmUpdated,
		FarmID: farmID,
	})
	e.logger.Info().
		Uint64("farmID", uint64(farmID)).
		Int64("apyBps", apyBps).
		Msg("Farm APY updated")
	return nil
}

// DeactivateFarm retires a farm from allocation. Deactivating an already
// inactive farm is a no-op, not an error.
func (e *Engine) DeactivateFarm(caller string, farmID types.FarmID) error {
	return e.setFarmActive(caller, farmID, false)
}

// ReactivateFarm brings a retired farm back into allocation. Idempotent in
// the same way as DeactivateFarm.
func (e *Engine) ReactivateFarm(caller string, farmID types.FarmID) error {
	return e.setFarmActive(caller, farmID, true)
}

func (e *Engine) setFarmActive(caller string, farmID types.FarmID, active bool) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if caller != e.owner {
		return ErrUnauthorized
	}
	if int(farmID) >= len(e.farms) {
		return ErrUnknownFarm
	}
	if e.farms[farmID].Active == active {
		return nil
	}
	e.farms[farmID].Active = active
	e.logger.Info().
		Uint64("farmID", uint64(farmID)).
		Bool("active", active).
		Msg("Farm active flag changed")
	return nil
}

// AddBridge registers a cross-network route and returns its id. There is no
// fee update: a wrong fee is corrected by adding a replacement bridge and
// deactivating this one.
func (e *Engine) AddBridge(caller, contract string, destination types.NetworkID, fee sdkmath.Int) (types.BridgeID, error) {
	if err := e.begin(); err != nil {
		return 0, err
	}
	defer e.end()

	if caller != e.owner {
		return 0, ErrUnauthorized
	}
	if contract == "" || fee.IsNil() || fee.IsNegative() {
		return 0, ErrInvalidInput
	}

	bridgeID := types.BridgeID(len(e.bridges))
	e.bridges = append(e.bridges, types.Bridge{
		ID:                   bridgeID,
		Contract:             contract,
		DestinationNetworkID: destination,
		Fee:                  fee,
		Active:               true,
	})

	e.emit(newOperationID(), types.Event{
		Type:      types.EventBridgeAdded,
		NetworkID: destination,
		Fee:       fee,
	})
	e.logger.Info().
		Uint64("bridgeID", uint64(bridgeID)).
		Uint64("destinationNetworkID", uint64(destination)).
		Str("fee", fee.String()).
		Msg("Bridge added")
	return bridgeID, nil
}

// DeactivateBridge retires a bridge. Idempotent.
func (e *Engine) DeactivateBridge(caller string, bridgeID types.BridgeID) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if caller != e.owner {
		return ErrUnauthorized
	}
	if int(bridgeID) >= len(e.bridges) {
		return ErrUnknownBridge
	}
	e.bridges[bridgeID].Active = false
	return nil
}

// SetPlatformFee updates the deposit fee, capped at 1000 bps.
func (e *Engine) SetPlatformFee(caller string, feeBps int64) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if caller != e.owner {
		return ErrUnauthorized
	}
	if feeBps < 0 || feeBps > maxPlatformFeeBps {
		return ErrInvalidInput
	}
	e.params.PlatformFeeBps = feeBps
	e.logger.Info().Int64("platformFeeBps", feeBps).Msg("Platform fee updated")
	return nil
}

// SetRebalanceThreshold updates the minimum APY gap required before the
// rebalancing controller moves a balance.
func (e *Engine) SetRebalanceThreshold(caller string, thresholdBps int64) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if caller != e.owner {
		return ErrUnauthorized
	}
	if thresholdBps < 0 {
		return ErrInvalidInput
	}
	e.params.RebalanceThresholdBps = thresholdBps
	e.logger.Info().Int64("rebalanceThresholdBps", thresholdBps).Msg("Rebalance threshold updated")
	return nil
}

// SetAutoRebalanceEnabled flips the global rebalancing gate.
func (e *Engine) SetAutoRebalanceEnabled(caller string, enabled bool) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if caller != e.owner {
		return ErrUnauthorized
	}
	e.params.AutoRebalanceEnabled = enabled
	e.logger.Info().Bool("autoRebalanceEnabled", enabled).Msg("Auto-rebalance flag updated")
	return nil
}
