/*

This file contains the default engine parameters.

These values are used if no active parameter set is found in the database
during initialization. They are calibrated for pooled capital where moving
funds has a real cost: rebalancing should chase meaningful yield gaps, not
noise.

*/

package config

import (
	"github.com/elys-network/yfo/internal/types"
)

// DefaultEngineParameters provides a baseline parameter set for the
// allocation engine.
var DefaultEngineParameters = types.EngineParameters{
	PlatformFeeBps: 50, // 0.5% deposit fee.
	// Rationale: covers operating costs without distorting routing; the cap
	// enforced by the engine is 1000 bps (10%).

	RebalanceThresholdBps: 200, // Require a 2% APY gap before moving funds.
	// Rationale: moving an entire balance for a sub-2% improvement loses
	// more to churn than the yield difference recovers.

	CooldownSeconds: 3600, // One rebalance per user per hour.
	// Rationale: yield inputs update on the order of minutes to hours;
	// rebalancing faster than the signal only amplifies noise.

	AutoRebalanceEnabled: true,
}
