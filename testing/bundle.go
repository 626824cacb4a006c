package escrowtesting

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/gametrade/zkescrow/modules/attestation"
)

// NewNotary generates a secp256k1 notary key pair.
func NewNotary() (*ecdsa.PrivateKey, common.Address, error) {
	privKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, common.Address{}, err
	}
	return privKey, crypto.PubkeyToAddress(privKey.PublicKey), nil
}

// SignBundle produces a bundle signed by the given notary key. The attested
// header hash is derived from the claim fields the way the exporter does:
// the notary signs a sha256 prehash, and v carries the Ethereum-style
// recovery id offset.
func SignBundle(notary *ecdsa.PrivateKey, originName string, timestamp uint64, ownsGood bool, transcriptHash common.Hash) (attestation.Bundle, error) {
	header := append([]byte(originName), transcriptHash.Bytes()...)
	header = binary.BigEndian.AppendUint64(header, timestamp)
	if ownsGood {
		header = append(header, 1)
	} else {
		header = append(header, 0)
	}
	hash := sha256.Sum256(header)

	sig, err := crypto.Sign(hash[:], notary)
	if err != nil {
		return attestation.Bundle{}, err
	}

	return attestation.Bundle{
		Hash: common.BytesToHash(hash[:]),
		Signature: attestation.Signature{
			R: common.BytesToHash(sig[:32]),
			S: common.BytesToHash(sig[32:64]),
			V: sig[64] + 27,
		},
		OriginName:     originName,
		Timestamp:      timestamp,
		OwnsGood:       ownsGood,
		TranscriptHash: transcriptHash,
	}, nil
}
