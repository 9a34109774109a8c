package transfer

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yfo/internal/logger"
)

// poolAccount is the internal account holding everything transferred in.
const poolAccount = "@pool"

// Bank is an in-memory TokenTransfer backend used by simulation mode and
// tests. Balances are tracked per token and account; a transfer fails with
// ErrTransferFailed when the source account cannot cover it, and failures
// can additionally be injected to exercise rollback paths.
type Bank struct {
	balances map[string]map[string]sdkmath.Int

	failNextIn  int
	failNextOut int
}

// NewBank creates an empty in-memory bank.
func NewBank() *Bank {
	return &Bank{
		balances: make(map[string]map[string]sdkmath.Int),
	}
}

var bankLogger = logger.GetForComponent("memory_bank")

// Credit seeds an account balance. Test and simulation setup only.
func (b *Bank) Credit(token, account string, amount sdkmath.Int) {
	b.add(token, account, amount)
}

// Balance returns the current balance of an account for a token.
func (b *Bank) Balance(token, account string) sdkmath.Int {
	accounts, ok := b.balances[token]
	if !ok {
		return sdkmath.ZeroInt()
	}
	bal, ok := accounts[account]
	if !ok {
		return sdkmath.ZeroInt()
	}
	return bal
}

// PoolBalance returns the pooled holdings of a token.
func (b *Bank) PoolBalance(token string) sdkmath.Int {
	return b.Balance(token, poolAccount)
}

// FailNextTransferIn makes the next n TransferIn calls fail.
func (b *Bank) FailNextTransferIn(n int) { b.failNextIn = n }

// FailNextTransferOut makes the next n TransferOut calls fail.
func (b *Bank) FailNextTransferOut(n int) { b.failNextOut = n }

// TransferIn implements TokenTransfer.
func (b *Bank) TransferIn(token, payer string, amount sdkmath.Int) error {
	if b.failNextIn > 0 {
		b.failNextIn--
		return fmt.Errorf("%w: injected inbound failure", ErrTransferFailed)
	}
	if err := b.move(token, payer, poolAccount, amount); err != nil {
		return err
	}
	bankLogger.Debug().
		Str("token", token).
		Str("payer", payer).
		Str("amount", amount.String()).
		Msg("Transferred in")
	return nil
}

// TransferOut implements TokenTransfer.
func (b *Bank) TransferOut(token, payee string, amount sdkmath.Int) error {
	if b.failNextOut > 0 {
		b.failNextOut--
		return fmt.Errorf("%w: injected outbound failure", ErrTransferFailed)
	}
	if err := b.move(token, poolAccount, payee, amount); err != nil {
		return err
	}
	bankLogger.Debug().
		Str("token", token).
		Str("payee", payee).
		Str("amount", amount.String()).
		Msg("Transferred out")
	return nil
}

func (b *Bank) move(token, from, to string, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return fmt.Errorf("%w: invalid amount", ErrTransferFailed)
	}
	if b.Balance(token, from).LT(amount) {
		return fmt.Errorf("%w: account %s holds less than %s %s", ErrTransferFailed, from, amount.String(), token)
	}
	b.sub(token, from, amount)
	b.add(token, to, amount)
	return nil
}

func (b *Bank) add(token, account string, amount sdkmath.Int) {
	accounts, ok := b.balances[token]
	if !ok {
		accounts = make(map[string]sdkmath.Int)
		b.balances[token] = accounts
	}
	current, ok := accounts[account]
	if !ok {
		current = sdkmath.ZeroInt()
	}
	accounts[account] = current.Add(amount)
}

func (b *Bank) sub(token, account string, amount sdkmath.Int) {
	b.balances[token][account] = b.balances[token][account].Sub(amount)
}
