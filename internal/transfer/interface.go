package transfer

import (
	"errors"

	sdkmath "cosmossdk.io/math"
)

// ErrTransferFailed is returned when the settlement backend rejects or
// cannot complete a transfer leg. The engine treats any transfer error as
// this condition and aborts the surrounding operation.
var ErrTransferFailed = errors.New("token transfer failed")

// TokenTransfer is the capability the engine uses to physically move value.
// The engine never holds tokens itself; it only instructs this collaborator
// and keeps its ledger consistent with the instructions that succeeded.
type TokenTransfer interface {
	// TransferIn pulls amount of token from the payer into the pool.
	TransferIn(token, payer string, amount sdkmath.Int) error

	// TransferOut pays amount of token from the pool to the payee.
	TransferOut(token, payee string, amount sdkmath.Int) error
}
