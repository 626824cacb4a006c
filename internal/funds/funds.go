// Package funds provides an in-process implementation of the ERC20-shaped
// funds interface the trade ledger settles against. The daemon wires it as
// the development-mode token; tests use it as the bank fixture.
package funds

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
)

const ModuleName = "funds"

var (
	ErrInsufficientBalance   = errorsmod.Register(ModuleName, 2, "insufficient balance")
	ErrInsufficientAllowance = errorsmod.Register(ModuleName, 3, "insufficient allowance")
	ErrTransfersDisabled     = errorsmod.Register(ModuleName, 4, "transfers disabled")
)

// Ledger tracks balances and allowances for a single token with the escrow
// module's fixed fractional-unit convention. The operator account is the
// implicit sender of Transfer and the implicit spender of TransferFrom,
// matching how the escrow keeper drives the external token.
type Ledger struct {
	mu sync.Mutex

	operator   common.Address
	balances   map[common.Address]sdkmath.Int
	allowances map[common.Address]sdkmath.Int

	// failing forces every transfer to fail; used to exercise the
	// ledger's rollback paths.
	failing bool
}

// NewLedger creates a token ledger operated by the given account.
func NewLedger(operator common.Address) *Ledger {
	return &Ledger{
		operator:   operator,
		balances:   make(map[common.Address]sdkmath.Int),
		allowances: make(map[common.Address]sdkmath.Int),
	}
}

// Mint credits the account with new units.
func (l *Ledger) Mint(account common.Address, amount sdkmath.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] = l.balanceLocked(account).Add(amount)
}

// Approve grants the operator an allowance over the owner's balance.
func (l *Ledger) Approve(owner common.Address, amount sdkmath.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[owner] = amount
}

// SetFailing toggles unconditional transfer failure.
func (l *Ledger) SetFailing(failing bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failing = failing
}

// BalanceOf returns the account balance.
func (l *Ledger) BalanceOf(account common.Address) sdkmath.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceLocked(account)
}

// Allowance returns the amount the spender may pull from the owner. Only the
// operator ever holds an allowance in this ledger.
func (l *Ledger) Allowance(owner, spender common.Address) sdkmath.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if spender != l.operator {
		return sdkmath.ZeroInt()
	}
	if allowance, ok := l.allowances[owner]; ok {
		return allowance
	}

	return sdkmath.ZeroInt()
}

// Transfer moves amount from the operator account to the recipient.
func (l *Ledger) Transfer(to common.Address, amount sdkmath.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.moveLocked(l.operator, to, amount)
}

// TransferFrom moves amount from the owner to the recipient, spending the
// operator's allowance.
func (l *Ledger) TransferFrom(from, to common.Address, amount sdkmath.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	allowance, ok := l.allowances[from]
	if !ok || allowance.LT(amount) {
		return errorsmod.Wrapf(ErrInsufficientAllowance, "owner %s", from)
	}

	if err := l.moveLocked(from, to, amount); err != nil {
		return err
	}

	l.allowances[from] = allowance.Sub(amount)
	return nil
}

func (l *Ledger) moveLocked(from, to common.Address, amount sdkmath.Int) error {
	if l.failing {
		return ErrTransfersDisabled
	}

	balance := l.balanceLocked(from)
	if balance.LT(amount) {
		return errorsmod.Wrapf(ErrInsufficientBalance, "account %s has %s, needs %s", from, balance, amount)
	}

	l.balances[from] = balance.Sub(amount)
	l.balances[to] = l.balanceLocked(to).Add(amount)
	return nil
}

func (l *Ledger) balanceLocked(account common.Address) sdkmath.Int {
	if balance, ok := l.balances[account]; ok {
		return balance
	}
	return sdkmath.ZeroInt()
}
