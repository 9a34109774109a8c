/*

This file contains the types for user positions which contains all the state
needed for assisting in rebalancing and withdrawal planning.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// UserPosition tracks one user's aggregate standing across all farms.
// Created lazily on first deposit and never destroyed; a zeroed position is
// equivalent to absence.
type UserPosition struct {
	TotalDeposited    sdkmath.Int `json:"total_deposited"`
	TotalEarned       sdkmath.Int `json:"total_earned"`
	LastRebalanceTime time.Time   `json:"last_rebalance_time"`
}

// FarmBalance is one entry of a user's position snapshot. Entries stay in the
// snapshot with a zero balance once a farm has ever held funds for the user.
type FarmBalance struct {
	FarmID  FarmID      `json:"farm_id"`
	ApyBps  int64       `json:"apy_bps"`
	Balance sdkmath.Int `json:"balance"`
}

// PositionSnapshot is the read-only view of a user position returned by the
// engine accessors and the web API.
type PositionSnapshot struct {
	Address           string        `json:"address"`
	TotalDeposited    sdkmath.Int   `json:"total_deposited"`
	TotalEarned       sdkmath.Int   `json:"total_earned"`
	EstimatedEarnings sdkmath.Int   `json:"estimated_earnings"`
	LastRebalanceTime time.Time     `json:"last_rebalance_time"`
	FarmBalances      []FarmBalance `json:"farm_balances"`
}

// PortfolioSnapshot captures the whole engine state at a point in time for
// persistence and the dashboard summary.
type PortfolioSnapshot struct {
	OperationNumber  int         `json:"operation_number"`
	Timestamp        time.Time   `json:"timestamp"`
	TotalValueLocked sdkmath.Int `json:"total_value_locked"`
	FarmCount        int         `json:"farm_count"`
	BridgeCount      int         `json:"bridge_count"`
	Farms            []Farm      `json:"farms"`
}
