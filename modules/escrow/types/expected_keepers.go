package types

import (
	"github.com/ethereum/go-ethereum/common"

	sdkmath "cosmossdk.io/math"
)

// BankKeeper is the balance-tracking token interface the ledger moves funds
// through. It mirrors the external stablecoin contract: Transfer spends from
// the escrow account, TransferFrom requires an allowance granted to the
// escrow account by the owner. Calls are treated as opaque and
// possibly-failing; a non-nil error aborts the surrounding operation.
type BankKeeper interface {
	BalanceOf(account common.Address) sdkmath.Int
	Transfer(to common.Address, amount sdkmath.Int) error
	TransferFrom(from, to common.Address, amount sdkmath.Int) error
	Allowance(owner, spender common.Address) sdkmath.Int
}
