package types

import "time"

// EngineParameters is the tunable configuration of the allocation engine.
// A named, versioned set is persisted in the database; administration flips
// individual values at runtime through the engine setters.
type EngineParameters struct {
	// PlatformFeeBps is charged on every deposit, capped at 1000 (10%).
	PlatformFeeBps int64 `json:"platform_fee_bps"`

	// RebalanceThresholdBps is the minimum APY gap, in basis points, before
	// a balance is moved into the best farm.
	RebalanceThresholdBps int64 `json:"rebalance_threshold_bps"`

	// CooldownSeconds is the minimum logical-time interval between
	// successive rebalances for the same user.
	CooldownSeconds int64 `json:"cooldown_seconds"`

	// AutoRebalanceEnabled gates the rebalancing controller globally.
	AutoRebalanceEnabled bool `json:"auto_rebalance_enabled"`
}

// Cooldown returns the rebalance cooldown as a duration.
func (p EngineParameters) Cooldown() time.Duration {
	return time.Duration(p.CooldownSeconds) * time.Second
}
