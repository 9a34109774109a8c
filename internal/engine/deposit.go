package engine

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yfo/internal/allocator"
	"github.com/elys-network/yfo/internal/types"
)

// DepositAndRoute pulls amount of the settlement asset from the user, takes
// the platform fee cut, and routes the remainder into the current global
// best farm.
//
// The flow is ordered reads, then external transfers, then ledger mutation,
// so a collaborator failure aborts before any state is touched. The one
// two-legged transfer sequence (pull funds, forward the fee) compensates a
// failed fee leg by returning the pulled amount before reporting the error.
func (e *Engine) DepositAndRoute(user, token string, amount sdkmath.Int) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if user == "" || token == "" || amount.IsNil() || !amount.IsPositive() {
		return ErrInvalidInput
	}
	if token != e.asset {
		return fmt.Errorf("%w: unsupported token %q", ErrInvalidInput, token)
	}

	bestFarm, ok := allocator.SelectBestFarm(e.farms)
	if !ok {
		return ErrNoEligibleFarm
	}

	if err := e.transfer.TransferIn(token, user, amount); err != nil {
		e.logger.Warn().Err(err).Str("user", user).Msg("Deposit transfer-in failed")
		return fmt.Errorf("pulling deposit: %w", err)
	}

	fee := amount.MulRaw(e.params.PlatformFeeBps).QuoRaw(basisPointDenom)
	net := amount.Sub(fee)

	if fee.IsPositive() {
		if err := e.transfer.TransferOut(token, e.feeCollector, fee); err != nil {
			// Return the pulled funds so the failed operation leaves no
			// trace on either side.
			if refundErr := e.transfer.TransferOut(token, user, amount); refundErr != nil {
				e.logger.Error().Err(refundErr).
					Str("user", user).
					Str("amount", amount.String()).
					Msg("Refund after failed fee transfer also failed; manual reconciliation required")
			}
			return fmt.Errorf("forwarding platform fee: %w", err)
		}
	}

	e.recordDeposit(user, bestFarm, net)
	e.farms[bestFarm].Tvl = e.farms[bestFarm].Tvl.Add(net)
	e.totalValueLocked = e.totalValueLocked.Add(net)

	e.emit(newOperationID(), types.Event{
		Type:   types.EventDeposit,
		User:   user,
		FarmID: bestFarm,
		Amount: net,
		Fee:    fee,
	})
	e.logger.Info().
		Str("user", user).
		Uint64("farmID", uint64(bestFarm)).
		Str("net", net.String()).
		Str("fee", fee.String()).
		Msg("Deposit routed")
	return nil
}
