package types

import (
	"cosmossdk.io/math"
)

type BridgeID uint64

// Bridge is a registered cross-network route. Immutable after creation except
// for the active flag; a wrong fee is corrected by registering a replacement
// bridge and deactivating this one.
type Bridge struct {
	ID                   BridgeID  `json:"id"`
	Contract             string    `json:"contract"` // Opaque transport handle
	DestinationNetworkID NetworkID `json:"destination_network_id"`
	Fee                  math.Int  `json:"fee"` // Flat fee deducted from any bridged amount
	Active               bool      `json:"active"`
}
