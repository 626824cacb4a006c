package keeper

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/gametrade/zkescrow/modules/escrow/types"
)

// EscrowBalanceInvariant checks that the escrow account holds at least the
// sum of payments and stakes still locked by open trades. A violation means
// funds were moved outside the ledger's transitions.
func (k *Keeper) EscrowBalanceInvariant() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	locked := sdkmath.ZeroInt()
	for _, trade := range k.trades {
		switch trade.Status {
		case types.StatusPending:
			locked = locked.Add(trade.Amount)
		case types.StatusAcknowledged:
			locked = locked.Add(trade.Amount).Add(trade.Stake)
		}
	}

	balance := k.bank.BalanceOf(types.GetEscrowAddress())
	if balance.LT(locked) {
		return errorsmod.Wrapf(types.ErrTransferFailed,
			"escrow balance %s below locked total %s", balance, locked)
	}

	return nil
}
