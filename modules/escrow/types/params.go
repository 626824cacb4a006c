package types

import (
	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
)

const (
	// DefaultStakePercent disables seller staking
	DefaultStakePercent uint32 = 0

	// MaxStakePercent caps the seller stake at the full payment amount
	MaxStakePercent uint32 = 100
)

// Params is the administrative configuration of the trade ledger.
type Params struct {
	// StakePercent is the seller stake pulled at acknowledgment, as a
	// percentage of the payment amount (0-100)
	StakePercent uint32 `json:"stakePercent"`
	// Resolver is the only identity permitted to resolve trades by proof
	Resolver common.Address `json:"resolver"`
}

// NewParams creates a new parameter configuration for the trade ledger.
func NewParams(stakePercent uint32, resolver common.Address) Params {
	return Params{
		StakePercent: stakePercent,
		Resolver:     resolver,
	}
}

// DefaultParams is the default parameter configuration for the trade ledger.
func DefaultParams() Params {
	return NewParams(DefaultStakePercent, common.Address{})
}

// Validate ensures the parameter values are within bounds.
func (p Params) Validate() error {
	if p.StakePercent > MaxStakePercent {
		return errorsmod.Wrapf(ErrInvalidStakePercent, "got %d", p.StakePercent)
	}

	return nil
}
