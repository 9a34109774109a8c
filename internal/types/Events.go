package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// EventType labels the observable events emitted by the engine for external
// auditing. Events describe state transitions; they are never read back to
// rebuild state.
type EventType string

const (
	EventFarmAdded    EventType = "FARM_ADDED"
	EventFarmUpdated  EventType = "FARM_APY_UPDATED"
	EventBridgeAdded  EventType = "BRIDGE_ADDED"
	EventDeposit      EventType = "DEPOSIT"
	EventWithdrawal   EventType = "WITHDRAWAL"
	EventRebalance    EventType = "REBALANCE"
	EventCrossNetwork EventType = "CROSS_NETWORK_TRANSFER"
)

// Event is a single audit record. OperationID groups the events emitted by
// one public engine operation.
type Event struct {
	OperationID     string      `json:"operation_id"`
	Type            EventType   `json:"type"`
	User            string      `json:"user,omitempty"`
	FarmID          FarmID      `json:"farm_id,omitempty"`
	SourceFarmID    FarmID      `json:"source_farm_id,omitempty"`
	NetworkID       NetworkID   `json:"network_id,omitempty"`
	SourceNetworkID NetworkID   `json:"source_network_id,omitempty"`
	Amount          sdkmath.Int `json:"amount,omitempty"`
	Fee             sdkmath.Int `json:"fee,omitempty"`
	Shortfall       sdkmath.Int `json:"shortfall,omitempty"`
	Timestamp       time.Time   `json:"timestamp"`
}
