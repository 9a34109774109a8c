package engine

import (
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yfo/internal/allocator"
	"github.com/elys-network/yfo/internal/types"
)

// AutoRebalance steers one user's existing balances toward the current best
// farm. A source balance moves in full when the best farm out-yields it by
// more than the configured threshold; partial moves are never made. The
// user's rebalance timestamp is stamped even when nothing qualified, so the
// cooldown always restarts.
func (e *Engine) AutoRebalance(user string) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if user == "" {
		return ErrInvalidInput
	}

	pos, ok := e.positions[user]
	if !ok || !pos.TotalDeposited.IsPositive() {
		return ErrNoActivePosition
	}

	now := e.clock()
	if now.Before(pos.LastRebalanceTime.Add(e.params.Cooldown())) {
		return ErrCooldownActive
	}
	if !e.params.AutoRebalanceEnabled {
		return ErrRebalancingDisabled
	}

	bestFarm, found := allocator.SelectBestFarm(e.farms)
	if !found {
		return ErrNoEligibleFarm
	}
	bestApy := e.farms[bestFarm].ApyBps

	operationID := newOperationID()
	moves := 0
	for _, farmID := range e.activeFarms[user] {
		if farmID == bestFarm {
			continue
		}
		bal := e.balance(user, farmID)
		if !bal.IsPositive() {
			continue
		}
		if bestApy <= e.farms[farmID].ApyBps+e.params.RebalanceThresholdBps {
			continue
		}

		// Move the entire balance. The source farm stays in the user's
		// active set with a zero balance.
		e.setBalance(user, farmID, sdkmath.ZeroInt())
		e.setBalance(user, bestFarm, e.balance(user, bestFarm).Add(bal))
		e.trackFarm(user, bestFarm)
		e.farms[farmID].Tvl = e.farms[farmID].Tvl.Sub(bal)
		e.farms[bestFarm].Tvl = e.farms[bestFarm].Tvl.Add(bal)
		moves++

		e.emit(operationID, types.Event{
			Type:         types.EventRebalance,
			User:         user,
			SourceFarmID: farmID,
			FarmID:       bestFarm,
			Amount:       bal,
		})
		e.logger.Info().
			Str("user", user).
			Uint64("sourceFarmID", uint64(farmID)).
			Uint64("targetFarmID", uint64(bestFarm)).
			Str("amount", bal.String()).
			Msg("Balance rebalanced to best farm")
	}

	pos.LastRebalanceTime = now
	if moves == 0 {
		e.logger.Debug().Str("user", user).Msg("No farm cleared the rebalance threshold")
	}
	return nil
}
