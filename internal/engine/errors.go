package engine

import (
	"errors"

	"github.com/elys-network/yfo/internal/transfer"
)

// Failure taxonomy of the public engine operations. All failures are
// synchronous and abort the whole operation with no partial effect; none are
// retried by the engine itself.
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrUnknownFarm             = errors.New("unknown or inactive farm")
	ErrUnknownBridge           = errors.New("unknown bridge")
	ErrNoEligibleFarm          = errors.New("no eligible farm")
	ErrNoEligibleFarmOnNetwork = errors.New("no eligible farm on target network")
	ErrNoActiveBridge          = errors.New("no active bridge to target network")
	ErrAmountBelowBridgeFee    = errors.New("amount does not cover the bridge fee")
	ErrInsufficientBalance     = errors.New("amount exceeds recorded position")
	ErrCooldownActive          = errors.New("rebalance cooldown has not elapsed")
	ErrRebalancingDisabled     = errors.New("automatic rebalancing is disabled")
	ErrNoActivePosition        = errors.New("no active position")
	ErrUnauthorized            = errors.New("caller is not the engine owner")
	ErrReentrantCall           = errors.New("re-entrant engine call")

	// ErrTransferFailed aliases the collaborator sentinel so callers can
	// match on either package.
	ErrTransferFailed = transfer.ErrTransferFailed
)
