package keeper

import (
	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/gametrade/zkescrow/modules/escrow/types"
)

// Trade state transitions. Every transition first checks the current status
// and caller identity under the table lock, updates the record to the
// post-transition value, and only then invokes the external funds transfer.
// A failing transfer rolls the record back, so the operation either commits
// in full or has no effect. The one exception is an unrecoverable partial
// refund in ResolveWithProof, which commits the terminal status instead of
// reopening a payout path.

// CreateTrade locks the buyer's payment and creates a new pending trade.
// The payment is pulled atomically with record creation: if the transfer
// fails, no trade is created.
func (k *Keeper) CreateTrade(buyer, seller common.Address, goodID uint64, deliveryID string, amount sdkmath.Int) (uint64, error) {
	trade := types.NewTrade(buyer, seller, goodID, deliveryID, amount, k.clock.Now())
	if err := trade.Validate(); err != nil {
		return 0, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	escrow := types.GetEscrowAddress()
	if k.bank.Allowance(buyer, escrow).LT(amount) {
		return 0, errorsmod.Wrapf(types.ErrInvalidInput, "allowance below amount %s", amount)
	}
	if k.bank.BalanceOf(buyer).LT(amount) {
		return 0, errorsmod.Wrapf(types.ErrInvalidInput, "balance below amount %s", amount)
	}

	if err := k.bank.TransferFrom(buyer, escrow, amount); err != nil {
		return 0, errorsmod.Wrapf(types.ErrTransferFailed, "failed to lock payment: %v", err)
	}

	trade.ID = k.nextID
	k.nextID++
	k.trades[trade.ID] = trade

	k.Logger().Info("trade created",
		types.AttributeKeyTradeID, trade.ID,
		types.AttributeKeyBuyer, trade.Buyer,
		types.AttributeKeySeller, trade.Seller,
		types.AttributeKeyGoodID, trade.GoodID,
		types.AttributeKeyAmount, trade.Amount,
	)
	emitTradeMetric(types.EventTypeCreateTrade, trade)

	return trade.ID, nil
}

// CancelTrade lets the buyer withdraw a trade the seller has not yet
// acknowledged. The locked payment is refunded in full.
func (k *Keeper) CancelTrade(caller common.Address, id uint64) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	trade, err := k.getLocked(id)
	if err != nil {
		return err
	}
	if trade.Status != types.StatusPending {
		return errorsmod.Wrapf(types.ErrInvalidState, "trade %d is %s, expected %s", id, trade.Status, types.StatusPending)
	}
	if caller != trade.Buyer {
		return errorsmod.Wrapf(types.ErrUnauthorized, "caller %s is not the buyer", caller)
	}

	prev := trade
	trade.Status = types.StatusCancelled
	k.trades[id] = trade

	if err := k.bank.Transfer(trade.Buyer, trade.Amount); err != nil {
		k.trades[id] = prev
		return errorsmod.Wrapf(types.ErrTransferFailed, "failed to refund payment: %v", err)
	}

	k.Logger().Info("trade cancelled", types.AttributeKeyTradeID, id, types.AttributeKeyAmount, trade.Amount)
	emitTradeMetric(types.EventTypeCancelTrade, trade)

	return nil
}

// ReclaimExpired refunds the buyer of a trade the seller failed to
// acknowledge within the acknowledgment deadline.
func (k *Keeper) ReclaimExpired(caller common.Address, id uint64) error {
	now := k.clock.Now()

	k.mu.Lock()
	defer k.mu.Unlock()

	trade, err := k.getLocked(id)
	if err != nil {
		return err
	}
	if trade.Status != types.StatusPending {
		return errorsmod.Wrapf(types.ErrInvalidState, "trade %d is %s, expected %s", id, trade.Status, types.StatusPending)
	}
	if caller != trade.Buyer {
		return errorsmod.Wrapf(types.ErrUnauthorized, "caller %s is not the buyer", caller)
	}
	if deadline := trade.CreatedAt.Add(types.AcknowledgeDeadline); now.Before(deadline) {
		return errorsmod.Wrapf(types.ErrTimeNotElapsed, "acknowledgment deadline is %s", deadline)
	}

	prev := trade
	trade.Status = types.StatusRefunded
	k.trades[id] = trade

	if err := k.bank.Transfer(trade.Buyer, trade.Amount); err != nil {
		k.trades[id] = prev
		return errorsmod.Wrapf(types.ErrTransferFailed, "failed to refund payment: %v", err)
	}

	k.Logger().Info("trade reclaimed", types.AttributeKeyTradeID, id, types.AttributeKeyAmount, trade.Amount)
	emitTradeMetric(types.EventTypeReclaimTrade, trade)

	return nil
}

// Acknowledge commits the seller to a pending trade, locking the configured
// stake and opening the dispute window. A failing stake transfer aborts the
// whole acknowledgment.
func (k *Keeper) Acknowledge(caller common.Address, id uint64) error {
	now := k.clock.Now()

	k.mu.Lock()
	defer k.mu.Unlock()

	trade, err := k.getLocked(id)
	if err != nil {
		return err
	}
	if trade.Status != types.StatusPending {
		return errorsmod.Wrapf(types.ErrInvalidState, "trade %d is %s, expected %s", id, trade.Status, types.StatusPending)
	}
	if caller != trade.Seller {
		return errorsmod.Wrapf(types.ErrUnauthorized, "caller %s is not the seller", caller)
	}

	stake := trade.Amount.MulRaw(int64(k.params.StakePercent)).QuoRaw(100)

	prev := trade
	trade.Status = types.StatusAcknowledged
	trade.AcknowledgedAt = now
	trade.Stake = stake
	k.trades[id] = trade

	if stake.IsPositive() {
		if err := k.bank.TransferFrom(trade.Seller, types.GetEscrowAddress(), stake); err != nil {
			k.trades[id] = prev
			return errorsmod.Wrapf(types.ErrTransferFailed, "failed to lock stake: %v", err)
		}
	}

	k.Logger().Info("trade acknowledged",
		types.AttributeKeyTradeID, id,
		types.AttributeKeyStake, stake,
	)
	emitTradeMetric(types.EventTypeAcknowledge, trade)

	return nil
}

// ClaimAfterWindow pays the seller the payment plus stake once the dispute
// window has elapsed with no resolution.
func (k *Keeper) ClaimAfterWindow(caller common.Address, id uint64) error {
	now := k.clock.Now()

	k.mu.Lock()
	defer k.mu.Unlock()

	trade, err := k.getLocked(id)
	if err != nil {
		return err
	}
	if trade.Status != types.StatusAcknowledged {
		return errorsmod.Wrapf(types.ErrInvalidState, "trade %d is %s, expected %s", id, trade.Status, types.StatusAcknowledged)
	}
	if caller != trade.Seller {
		return errorsmod.Wrapf(types.ErrUnauthorized, "caller %s is not the seller", caller)
	}
	if windowEnd := trade.AcknowledgedAt.Add(types.DisputeWindow); now.Before(windowEnd) {
		return errorsmod.Wrapf(types.ErrTimeNotElapsed, "dispute window closes at %s", windowEnd)
	}

	prev := trade
	trade.Status = types.StatusCompleted
	k.trades[id] = trade

	if err := k.bank.Transfer(trade.Seller, trade.Amount.Add(trade.Stake)); err != nil {
		k.trades[id] = prev
		return errorsmod.Wrapf(types.ErrTransferFailed, "failed to pay seller: %v", err)
	}

	k.Logger().Info("trade claimed after window", types.AttributeKeyTradeID, id)
	emitTradeMetric(types.EventTypeClaim, trade)

	return nil
}

// ResolveWithProof settles an acknowledged trade from a verified ownership
// outcome. ownsGood pays the seller the payment plus stake; otherwise the
// buyer is refunded in full and the stake returned to the seller. Restricted
// to the designated resolver identity.
func (k *Keeper) ResolveWithProof(caller common.Address, id uint64, ownsGood bool) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	trade, err := k.getLocked(id)
	if err != nil {
		return err
	}
	if trade.Status != types.StatusAcknowledged {
		return errorsmod.Wrapf(types.ErrInvalidState, "trade %d is %s, expected %s", id, trade.Status, types.StatusAcknowledged)
	}
	if caller != k.params.Resolver {
		return errorsmod.Wrapf(types.ErrUnauthorized, "caller %s is not the resolver", caller)
	}

	prev := trade

	if ownsGood {
		trade.Status = types.StatusCompleted
		k.trades[id] = trade

		if err := k.bank.Transfer(trade.Seller, trade.Amount.Add(trade.Stake)); err != nil {
			k.trades[id] = prev
			return errorsmod.Wrapf(types.ErrTransferFailed, "failed to pay seller: %v", err)
		}
	} else {
		trade.Status = types.StatusRefunded
		k.trades[id] = trade

		if err := k.bank.Transfer(trade.Buyer, trade.Amount); err != nil {
			k.trades[id] = prev
			return errorsmod.Wrapf(types.ErrTransferFailed, "failed to refund buyer: %v", err)
		}
		if trade.Stake.IsPositive() {
			if err := k.bank.Transfer(trade.Seller, trade.Stake); err != nil {
				// the buyer refund already committed: pull it back so the
				// rollback leaves no partial movement
				if cerr := k.bank.TransferFrom(trade.Buyer, types.GetEscrowAddress(), trade.Amount); cerr != nil {
					// the refund cannot be recovered. The trade must stay
					// Refunded: rolling back to Acknowledged would leave a
					// claim path paying out more than was ever locked.
					k.Logger().Error("stake return failed after committed buyer refund",
						types.AttributeKeyTradeID, id,
						types.AttributeKeyStake, trade.Stake,
						"err", err,
						"compensation_err", cerr,
					)
					return errorsmod.Wrapf(types.ErrTransferFailed, "failed to return stake: %v", err)
				}

				k.trades[id] = prev
				return errorsmod.Wrapf(types.ErrTransferFailed, "failed to return stake: %v", err)
			}
		}
	}

	k.Logger().Info("trade resolved by proof",
		types.AttributeKeyTradeID, id,
		types.AttributeKeyOwnsGood, ownsGood,
		types.AttributeKeyStatus, trade.Status,
	)
	emitTradeMetric(types.EventTypeResolve, trade)

	return nil
}

// getLocked returns the trade for id. The caller must hold the table lock.
func (k *Keeper) getLocked(id uint64) (types.Trade, error) {
	trade, found := k.trades[id]
	if !found {
		return types.Trade{}, errorsmod.Wrapf(types.ErrTradeNotFound, "trade %d", id)
	}

	return trade, nil
}
