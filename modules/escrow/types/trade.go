package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
)

// TradeStatus is the lifecycle status of a trade. Transitions only ever move
// forward: Pending is left exactly once and Acknowledged is left exactly
// once; Cancelled, Completed and Refunded are absorbing.
type TradeStatus uint8

const (
	StatusUnspecified TradeStatus = iota
	// StatusPending: payment locked, waiting for seller acknowledgment
	StatusPending
	// StatusAcknowledged: seller committed (stake locked), dispute window open
	StatusAcknowledged
	// StatusCompleted: payment and stake paid out to the seller
	StatusCompleted
	// StatusRefunded: payment returned to the buyer
	StatusRefunded
	// StatusCancelled: buyer withdrew before acknowledgment
	StatusCancelled
)

// String implements fmt.Stringer.
func (s TradeStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusAcknowledged:
		return "ACKNOWLEDGED"
	case StatusCompleted:
		return "COMPLETED"
	case StatusRefunded:
		return "REFUNDED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNSPECIFIED"
	}
}

// IsTerminal reports whether no further transition is permitted out of s.
func (s TradeStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRefunded || s == StatusCancelled
}

// Trade is a single escrowed exchange of a digital good for payment. Records
// are owned and mutated exclusively by the escrow keeper and retained after
// reaching a terminal status as an audit trail.
type Trade struct {
	// ID is assigned monotonically by the ledger
	ID uint64 `json:"id"`
	// Buyer pays Amount and names the delivery target
	Buyer common.Address `json:"buyer"`
	// Seller delivers the good and may lock a stake
	Seller common.Address `json:"seller"`
	// GoodID identifies the catalog item being traded (e.g. an app id)
	GoodID uint64 `json:"goodId"`
	// DeliveryID is the buyer's account name on the catalog the good must
	// be delivered to
	DeliveryID string `json:"deliveryId"`
	// Amount is the locked payment in base units
	Amount sdkmath.Int `json:"amount"`
	// Stake is the seller collateral locked at acknowledgment, zero if
	// staking is disabled
	Stake sdkmath.Int `json:"stake"`
	// Status is the current lifecycle status
	Status TradeStatus `json:"status"`
	// CreatedAt is the ledger time the trade was created
	CreatedAt time.Time `json:"createdAt"`
	// AcknowledgedAt is set exactly once, during acknowledgment, and never
	// mutated afterward. Zero until then.
	AcknowledgedAt time.Time `json:"acknowledgedAt"`
}

// NewTrade constructs a pending trade with no stake.
func NewTrade(buyer, seller common.Address, goodID uint64, deliveryID string, amount sdkmath.Int, createdAt time.Time) Trade {
	return Trade{
		Buyer:      buyer,
		Seller:     seller,
		GoodID:     goodID,
		DeliveryID: deliveryID,
		Amount:     amount,
		Stake:      sdkmath.ZeroInt(),
		Status:     StatusPending,
		CreatedAt:  createdAt,
	}
}

// Validate performs basic validation of the trade fields.
func (t Trade) Validate() error {
	if t.Buyer == (common.Address{}) {
		return errorsmod.Wrap(ErrInvalidInput, "buyer cannot be the zero address")
	}
	if t.Seller == (common.Address{}) {
		return errorsmod.Wrap(ErrInvalidInput, "seller cannot be the zero address")
	}
	if t.Buyer == t.Seller {
		return errorsmod.Wrap(ErrInvalidInput, "buyer and seller cannot be the same account")
	}
	if t.DeliveryID == "" {
		return errorsmod.Wrap(ErrInvalidInput, "delivery identifier cannot be empty")
	}
	if t.Amount.IsNil() || !t.Amount.IsPositive() {
		return errorsmod.Wrap(ErrInvalidInput, "amount must be positive")
	}

	return nil
}
