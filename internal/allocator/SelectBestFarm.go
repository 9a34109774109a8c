/*

This file contains the selection routines over the farm and bridge
registries. They are pure functions: the engine passes its current registry
slices and interprets the returned ids against the same slices.

*/

package allocator

import (
	"github.com/elys-network/yfo/internal/logger"
	"github.com/elys-network/yfo/internal/types"
)

var selectorLogger = logger.GetForComponent("farm_selector")

// SelectBestFarm returns the farm with the highest APY among active farms.
// The scan keeps farm 0 as the initial candidate and only a strictly greater
// APY replaces the running best, so ties resolve to the lowest id -- and
// farm 0 is returned unchanged when no active farm yields more than zero,
// even if farm 0 itself is inactive. Callers treat ok=false (empty registry)
// as the only hard "no farm" case; the index-0 fallback is deliberately kept
// as-is and pinned by tests.
func SelectBestFarm(farms []types.Farm) (types.FarmID, bool) {
	if len(farms) == 0 {
		return 0, false
	}

	bestID := farms[0].ID
	var bestApy int64
	for _, farm := range farms {
		if farm.Active && farm.ApyBps > bestApy {
			bestID = farm.ID
			bestApy = farm.ApyBps
		}
	}

	if bestApy == 0 {
		selectorLogger.Debug().
			Uint64("farmID", uint64(bestID)).
			Msg("No active farm with positive APY, falling back to first farm")
	}
	return bestID, true
}

// SelectBestFarmOnNetwork returns the highest-APY active farm on the given
// network. Unlike the global scan there is no default candidate: ok=false
// means no active farm exists on that network, and an active zero-APY farm
// is still a valid selection.
func SelectBestFarmOnNetwork(farms []types.Farm, networkID types.NetworkID) (types.FarmID, bool) {
	var bestID types.FarmID
	var bestApy int64
	found := false
	for _, farm := range farms {
		if !farm.Active || farm.NetworkID != networkID {
			continue
		}
		if !found || farm.ApyBps > bestApy {
			bestID = farm.ID
			bestApy = farm.ApyBps
			found = true
		}
	}
	return bestID, found
}

// SelectBridgeForNetwork returns the first active bridge whose destination
// matches the given network. First-match order is registration order.
func SelectBridgeForNetwork(bridges []types.Bridge, networkID types.NetworkID) (types.BridgeID, bool) {
	for _, bridge := range bridges {
		if bridge.Active && bridge.DestinationNetworkID == networkID {
			return bridge.ID, true
		}
	}
	return 0, false
}
