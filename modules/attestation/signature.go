package attestation

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	errorsmod "cosmossdk.io/errors"
)

const (
	// SignatureLength is the expected length of a recoverable ECDSA
	// signature (r||s||v)
	SignatureLength = 65

	// vOffset is the Ethereum-style recovery id offset
	vOffset = 27
)

// recoverSigner recovers the secp256k1 address that produced sig over hash.
// The notary signs the sha256 prehash of the attestation header, so recovery
// runs over the supplied hash as-is and never recomputes it.
func recoverSigner(hash common.Hash, sig Signature) (common.Address, error) {
	v := sig.V
	if v >= vOffset {
		v -= vOffset
	}
	if v > 1 {
		return common.Address{}, errorsmod.Wrapf(ErrInvalidSignature, "invalid recovery id: %d", sig.V)
	}

	raw := make([]byte, SignatureLength)
	copy(raw[:32], sig.R.Bytes())
	copy(raw[32:64], sig.S.Bytes())
	raw[64] = v

	pubKey, err := crypto.SigToPub(hash.Bytes(), raw)
	if err != nil {
		return common.Address{}, errorsmod.Wrapf(ErrInvalidSignature, "failed to recover public key: %v", err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}
