/*

This is the custom type for farms which contains all the state needed for
selecting allocation targets.

*/

package types

import (
	"time"

	"cosmossdk.io/math"
)

type FarmID uint64

type NetworkID uint64

type Farm struct {
	ID          FarmID    `json:"id"`
	Address     string    `json:"address"`      // Opaque destination handle, never dereferenced here
	ApyBps      int64     `json:"apy_bps"`      // Advertised yield in basis points (10000 = 100%)
	Tvl         math.Int  `json:"tvl"`          // Total value locked in this farm
	NetworkID   NetworkID `json:"network_id"`   // Logical network the farm lives on
	Active      bool      `json:"active"`       // Farms are deactivated, never removed
	LastUpdated time.Time `json:"last_updated"` // Last APY change or creation time
}
