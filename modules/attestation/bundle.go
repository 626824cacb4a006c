package attestation

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
)

// Signature holds the three scalar components of an ECDSA signature in the
// recoverable form emitted by the proof exporter. V uses the Ethereum
// convention of recovery id + 27.
type Signature struct {
	V uint8       `json:"v"`
	R common.Hash `json:"r"`
	S common.Hash `json:"s"`
}

// Bundle is a notary-signed attestation over a TLS session to the catalog
// API. It is produced by the external proof exporter and consumed unmodified;
// the field set and names form the wire contract with that pipeline.
//
// Hash is a pre-hashed record of the attestation header. The signature covers
// Hash directly; the serialized header itself never crosses this boundary.
type Bundle struct {
	Hash           common.Hash `json:"hash"`
	Signature      Signature   `json:"signature"`
	OriginName     string      `json:"originName"`
	Timestamp      uint64      `json:"timestamp"`
	OwnsGood       bool        `json:"ownsGood"`
	TranscriptHash common.Hash `json:"transcriptHash"`
}

// ParseBundle decodes a JSON-encoded bundle and performs basic validation.
func ParseBundle(bz []byte) (Bundle, error) {
	var bundle Bundle
	if err := json.Unmarshal(bz, &bundle); err != nil {
		return Bundle{}, errorsmod.Wrapf(ErrInvalidBundle, "failed to unmarshal bundle: %v", err)
	}

	if err := bundle.ValidateBasic(); err != nil {
		return Bundle{}, err
	}

	return bundle, nil
}

// ValidateBasic performs stateless validation of the bundle fields.
func (b Bundle) ValidateBasic() error {
	if b.OriginName == "" {
		return errorsmod.Wrap(ErrInvalidBundle, "origin name cannot be empty")
	}

	if b.Hash == (common.Hash{}) {
		return errorsmod.Wrap(ErrInvalidBundle, "hash cannot be zero")
	}

	if b.Signature.R == (common.Hash{}) || b.Signature.S == (common.Hash{}) {
		return errorsmod.Wrap(ErrInvalidBundle, "signature components cannot be zero")
	}

	if b.Timestamp == 0 {
		return errorsmod.Wrap(ErrInvalidBundle, "timestamp cannot be zero")
	}

	return nil
}
