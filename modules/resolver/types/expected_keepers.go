package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gametrade/zkescrow/modules/attestation"
)

// AttestationVerifier validates a notary-signed bundle, returning its claims
// on success. Implemented by the attestation verifier.
type AttestationVerifier interface {
	Verify(bundle attestation.Bundle) (attestation.Result, error)
}

// TradeLedger is the narrow capability the resolver needs from the escrow
// keeper: reading a trade's acknowledgment time and triggering proof-based
// resolution. Nothing else of the ledger is reachable from here.
type TradeLedger interface {
	AcknowledgedAt(id uint64) (time.Time, error)
	ResolveWithProof(caller common.Address, id uint64, ownsGood bool) error
}
