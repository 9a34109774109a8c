/*

This file runs a deterministic in-process scenario against the allocation
engine: seed a small farm and bridge universe, push deposits through routing,
shift yields, rebalance, reallocate across networks, and withdraw. It uses the
in-memory bank and an injected stepped clock, so every run produces the same
ledger. Useful for exercising the full flow surface without a database or any
external settlement.

*/

package simulations

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/elys-network/yfo/internal/engine"
	"github.com/elys-network/yfo/internal/logger"
	"github.com/elys-network/yfo/internal/transfer"
	"github.com/elys-network/yfo/internal/types"
)

var simLogger = logger.GetForComponent("simulation")

const (
	simAsset       = "uusdc"
	simOwner       = "owner"
	simCollector   = "collector"
	simHomeNetwork = types.NetworkID(1)
	simStep        = 10 * time.Minute
)

// steppedClock advances by a fixed increment on every read, giving the
// engine a monotonic, reproducible notion of time.
type steppedClock struct {
	now  time.Time
	step time.Duration
}

func (c *steppedClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

// RunScenario executes the full deterministic scenario and returns the final
// portfolio snapshot. Every step that is expected to succeed is checked; an
// error means the engine diverged from the scripted behavior.
func RunScenario() (types.PortfolioSnapshot, error) {
	clock := &steppedClock{now: time.Unix(1_700_000_000, 0), step: simStep}

	bank := transfer.NewBank()
	bank.Credit(simAsset, "alice", sdkmath.NewInt(1_000_000))
	bank.Credit(simAsset, "bob", sdkmath.NewInt(500_000))

	eng, err := engine.New(engine.Config{
		Owner:         simOwner,
		FeeCollector:  simCollector,
		Asset:         simAsset,
		HomeNetworkID: simHomeNetwork,
		Params: types.EngineParameters{
			PlatformFeeBps:        50,
			RebalanceThresholdBps: 200,
			CooldownSeconds:       3600,
			AutoRebalanceEnabled:  true,
		},
		Transfer: bank,
	})
	if err != nil {
		return types.PortfolioSnapshot{}, fmt.Errorf("building scenario engine: %w", err)
	}
	eng.WithClock(clock.Now)

	if err := seedUniverse(eng); err != nil {
		return types.PortfolioSnapshot{}, err
	}

	// Round 1: deposits route to the current best farm (farm 1, 8%).
	if err := eng.DepositAndRoute("alice", simAsset, sdkmath.NewInt(400_000)); err != nil {
		return types.PortfolioSnapshot{}, fmt.Errorf("alice deposit: %w", err)
	}
	if err := eng.DepositAndRoute("bob", simAsset, sdkmath.NewInt(200_000)); err != nil {
		return types.PortfolioSnapshot{}, fmt.Errorf("bob deposit: %w", err)
	}
	logState(eng, "after initial deposits")

	// Round 2: yields shift, farm 0 becomes the clear leader.
	if err := eng.UpdateFarmApy(simOwner, 0, 1_200); err != nil {
		return types.PortfolioSnapshot{}, fmt.Errorf("apy update: %w", err)
	}

	// Fresh depositors have no rebalance history, so their cooldown window
	// starts at the zero time and the first rebalance is always allowed.
	if err := eng.AutoRebalance("alice"); err != nil {
		return types.PortfolioSnapshot{}, fmt.Errorf("alice rebalance: %w", err)
	}
	logState(eng, "after rebalance")

	// An immediate second attempt must hit the cooldown.
	if err := eng.AutoRebalance("alice"); err != engine.ErrCooldownActive {
		return types.PortfolioSnapshot{}, fmt.Errorf("expected cooldown, got: %v", err)
	}

	// Round 3: bob reallocates half his capital to network 2.
	if err := eng.CrossChainOptimize("bob", 2, sdkmath.NewInt(100_000)); err != nil {
		return types.PortfolioSnapshot{}, fmt.Errorf("bob cross-network move: %w", err)
	}
	logState(eng, "after cross-network reallocation")

	// Round 4: partial withdrawals drain low-yield farms first.
	if err := eng.OptimizedWithdraw("alice", sdkmath.NewInt(150_000)); err != nil {
		return types.PortfolioSnapshot{}, fmt.Errorf("alice withdrawal: %w", err)
	}
	if err := eng.OptimizedWithdraw("bob", sdkmath.NewInt(50_000)); err != nil {
		return types.PortfolioSnapshot{}, fmt.Errorf("bob withdrawal: %w", err)
	}
	logState(eng, "after withdrawals")

	snapshot := eng.Snapshot()
	simLogger.Info().
		Str("totalValueLocked", snapshot.TotalValueLocked.String()).
		Int("farmCount", snapshot.FarmCount).
		Msg("Scenario completed")
	return snapshot, nil
}

// seedUniverse registers the scenario's farms and bridges.
func seedUniverse(eng *engine.Engine) error {
	farms := []struct {
		address   string
		apyBps    int64
		networkID types.NetworkID
	}{
		{"farm-home-stable", 500, simHomeNetwork},
		{"farm-home-growth", 800, simHomeNetwork},
		{"farm-remote-alpha", 700, 2},
		{"farm-remote-beta", 300, 2},
	}
	for _, f := range farms {
		if _, err := eng.AddFarm(simOwner, f.address, f.apyBps, f.networkID); err != nil {
			return fmt.Errorf("seeding farm %s: %w", f.address, err)
		}
	}

	if _, err := eng.AddBridge(simOwner, "bridge-to-2", 2, sdkmath.NewInt(1_000)); err != nil {
		return fmt.Errorf("seeding bridge: %w", err)
	}
	return nil
}

func logState(eng *engine.Engine, stage string) {
	snap := eng.Snapshot()
	evt := simLogger.Info().
		Str("stage", stage).
		Str("totalValueLocked", snap.TotalValueLocked.String())
	addFarmFields(evt, snap.Farms)
	evt.Msg("Scenario checkpoint")
}

func addFarmFields(evt *zerolog.Event, farms []types.Farm) {
	for _, f := range farms {
		evt.Str(fmt.Sprintf("farm_%d_tvl", f.ID), f.Tvl.String())
	}
}
