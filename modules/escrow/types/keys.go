package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// ModuleName defines the trade escrow module name
	ModuleName = "escrow"

	// Decimals is the fixed fractional-unit convention of the settlement
	// token (1.00 == 10^6 base units)
	Decimals = 6

	// AcknowledgeDeadline is how long the seller has to acknowledge a
	// pending trade before the buyer may reclaim the locked payment.
	AcknowledgeDeadline = 24 * time.Hour

	// DisputeWindow is the interval after acknowledgment during which a
	// proof-based resolution is accepted. Once it elapses the seller may
	// claim the payment and stake.
	DisputeWindow = time.Hour

	// escrowAddressVersion is folded into the escrow account derivation;
	// changing it would change the address and strand locked funds.
	escrowAddressVersion = "v1"
)

var escrowAddress = common.BytesToAddress(crypto.Keccak256([]byte(ModuleName + "/" + escrowAddressVersion))[12:])

// GetEscrowAddress returns the module account address holding locked
// payments and stakes. The address is derived deterministically from the
// module name so it is stable across processes.
func GetEscrowAddress() common.Address {
	return escrowAddress
}
