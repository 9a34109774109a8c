/*

Position ledger internals: per-user-per-farm balances, the insertion-ordered
active-farm set, the flat earnings estimate, and the low-yield-first drain
shared by the withdrawal and cross-network flows. None of these helpers take
the engine guard; they run inside a public operation that already holds it.

*/

package engine

import (
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yfo/internal/allocator"
	"github.com/elys-network/yfo/internal/types"
)

// position returns the user's position, creating it on first use. Positions
// are never destroyed; a zeroed position is equivalent to absence.
func (e *Engine) position(user string) *types.UserPosition {
	pos, ok := e.positions[user]
	if !ok {
		pos = &types.UserPosition{
			TotalDeposited: sdkmath.ZeroInt(),
			TotalEarned:    sdkmath.ZeroInt(),
		}
		e.positions[user] = pos
	}
	return pos
}

func (e *Engine) balance(user string, farmID types.FarmID) sdkmath.Int {
	farms, ok := e.balances[user]
	if !ok {
		return sdkmath.ZeroInt()
	}
	bal, ok := farms[farmID]
	if !ok {
		return sdkmath.ZeroInt()
	}
	return bal
}

func (e *Engine) setBalance(user string, farmID types.FarmID, amount sdkmath.Int) {
	farms, ok := e.balances[user]
	if !ok {
		farms = make(map[types.FarmID]sdkmath.Int)
		e.balances[user] = farms
	}
	farms[farmID] = amount
}

// trackFarm appends farmID to the user's active-farm set if not already
// present. The set keeps insertion order and entries are never removed, even
// when a balance drops back to zero.
func (e *Engine) trackFarm(user string, farmID types.FarmID) {
	seen, ok := e.activeFarmSeen[user]
	if !ok {
		seen = make(map[types.FarmID]bool)
		e.activeFarmSeen[user] = seen
	}
	if seen[farmID] {
		return
	}
	seen[farmID] = true
	e.activeFarms[user] = append(e.activeFarms[user], farmID)
}

// recordDeposit credits the user's balance in a farm and their total
// deposited figure. Farm and global TVL are adjusted by the calling flow.
func (e *Engine) recordDeposit(user string, farmID types.FarmID, amount sdkmath.Int) {
	pos := e.position(user)
	pos.TotalDeposited = pos.TotalDeposited.Add(amount)
	e.setBalance(user, farmID, e.balance(user, farmID).Add(amount))
	e.trackFarm(user, farmID)
}

// recordWithdrawal debits the user's balance in a farm together with the
// farm's TVL and the global accumulator. The caller guarantees the balance
// covers the amount.
func (e *Engine) recordWithdrawal(user string, farmID types.FarmID, amount sdkmath.Int) {
	pos := e.position(user)
	pos.TotalDeposited = pos.TotalDeposited.Sub(amount)
	e.setBalance(user, farmID, e.balance(user, farmID).Sub(amount))
	e.farms[farmID].Tvl = e.farms[farmID].Tvl.Sub(amount)
	e.totalValueLocked = e.totalValueLocked.Sub(amount)
}

// estimateEarnings models a flat one-period accrual over the user's current
// balances: sum of balance * apy / 10000 across the active-farm set. Not
// time-weighted; this mirrors the host system's accounting exactly.
func (e *Engine) estimateEarnings(user string) sdkmath.Int {
	earnings := sdkmath.ZeroInt()
	for _, farmID := range e.activeFarms[user] {
		bal := e.balance(user, farmID)
		if !bal.IsPositive() {
			continue
		}
		earnings = earnings.Add(bal.MulRaw(e.farms[farmID].ApyBps).QuoRaw(basisPointDenom))
	}
	return earnings
}

// drainFromFarms withdraws amount from the user's farms lowest yield first,
// taking min(remaining, balance) from each, and returns whatever could not
// be covered. A positive remainder means the ledger invariants have drifted;
// the caller decides how loudly to report it.
func (e *Engine) drainFromFarms(user string, amount sdkmath.Int) sdkmath.Int {
	ranked := allocator.RankFarmsByYieldAscending(e.farms, e.activeFarms[user])

	remaining := amount
	for _, farmID := range ranked {
		if !remaining.IsPositive() {
			break
		}
		bal := e.balance(user, farmID)
		if !bal.IsPositive() {
			continue
		}
		step := sdkmath.MinInt(remaining, bal)
		e.recordWithdrawal(user, farmID, step)
		remaining = remaining.Sub(step)
	}
	return remaining
}

// absorbShortfall books an uncovered drain remainder against the user's
// recorded total, flooring at zero. The funds were already paid out, so the
// recorded position must not keep claiming them; the discrepancy is logged
// at error level because it can only follow invariant drift.
func (e *Engine) absorbShortfall(user string, remaining sdkmath.Int) {
	if !remaining.IsPositive() {
		return
	}
	pos := e.position(user)
	pos.TotalDeposited = pos.TotalDeposited.Sub(remaining)
	if pos.TotalDeposited.IsNegative() {
		pos.TotalDeposited = sdkmath.ZeroInt()
	}
	e.logger.Error().
		Str("user", user).
		Str("shortfall", remaining.String()).
		Msg("Farm ranking exhausted before the requested amount was covered; ledger invariants have drifted")
}
