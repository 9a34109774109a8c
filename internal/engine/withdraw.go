package engine

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yfo/internal/types"
)

// OptimizedWithdraw pays out amount of the settlement asset and drains the
// user's farm balances lowest yield first to cover it, keeping high-yield
// positions intact as long as possible.
//
// The current one-period earnings estimate is booked into TotalEarned on
// every successful withdrawal, decoupled from the amount withdrawn. If the
// ranking is exhausted with a remainder -- only possible after invariant
// drift -- the shortfall is absorbed into the recorded total and reported
// through the audit event and the log rather than as an error: the payout
// has already happened at that point.
func (e *Engine) OptimizedWithdraw(user string, amount sdkmath.Int) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if user == "" || amount.IsNil() || !amount.IsPositive() {
		return ErrInvalidInput
	}
	pos, ok := e.positions[user]
	if !ok || amount.GT(pos.TotalDeposited) {
		return ErrInsufficientBalance
	}

	earnings := e.estimateEarnings(user)

	if err := e.transfer.TransferOut(e.asset, user, amount); err != nil {
		e.logger.Warn().Err(err).Str("user", user).Msg("Withdrawal transfer-out failed")
		return fmt.Errorf("paying out withdrawal: %w", err)
	}

	pos.TotalEarned = pos.TotalEarned.Add(earnings)

	remaining := e.drainFromFarms(user, amount)
	e.absorbShortfall(user, remaining)

	event := types.Event{
		Type:   types.EventWithdrawal,
		User:   user,
		Amount: amount,
	}
	if remaining.IsPositive() {
		event.Shortfall = remaining
	}
	e.emit(newOperationID(), event)

	e.logger.Info().
		Str("user", user).
		Str("amount", amount.String()).
		Str("estimatedEarnings", earnings.String()).
		Msg("Withdrawal completed")
	return nil
}
