package attestation

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
)

// DefaultOriginName is the catalog API origin attestations are expected to
// cover.
const DefaultOriginName = "api.steampowered.com"

// Result carries the verified claims of a bundle. The fields are returned
// verbatim from the bundle once the origin and signature checks pass; the
// semantic content behind the signed hash is trusted to the notary.
type Result struct {
	OwnsGood       bool
	Timestamp      uint64
	TranscriptHash common.Hash
}

// Verifier validates attestation bundles against a single trusted notary and
// an expected origin name. It keeps no record of which bundles have been
// seen: verifying the same bundle twice returns the same result both times.
// Replay safety is a property of the caller's state transitions.
type Verifier struct {
	// mu guards notary; the remaining fields are immutable after
	// construction
	mu sync.RWMutex

	logger     log.Logger
	authority  common.Address
	notary     common.Address
	originName string
}

// NewVerifier creates a verifier trusting the given notary identity.
func NewVerifier(logger log.Logger, authority, notary common.Address, originName string) (*Verifier, error) {
	if notary == (common.Address{}) {
		return nil, errorsmod.Wrap(ErrInvalidNotary, "notary cannot be the zero address")
	}
	if originName == "" {
		return nil, errorsmod.Wrap(ErrInvalidBundle, "origin name cannot be empty")
	}

	return &Verifier{
		logger:     logger,
		authority:  authority,
		notary:     notary,
		originName: originName,
	}, nil
}

// Logger returns a module-specific logger.
func (v *Verifier) Logger() log.Logger {
	return v.logger.With("module", "x/"+ModuleName)
}

// Verify checks the bundle's origin name byte-exact against the expected
// origin and recovers the signer of bundle.Hash, comparing it to the trusted
// notary. On success the bundle's own claims are returned unchanged.
func (v *Verifier) Verify(bundle Bundle) (Result, error) {
	if err := bundle.ValidateBasic(); err != nil {
		return Result{}, err
	}

	// originName is immutable after construction; only the notary needs the
	// lock
	if bundle.OriginName != v.originName {
		return Result{}, errorsmod.Wrapf(ErrInvalidServerName, "expected %s, got %s", v.originName, bundle.OriginName)
	}

	v.mu.RLock()
	notary := v.notary
	v.mu.RUnlock()

	signer, err := recoverSigner(bundle.Hash, bundle.Signature)
	if err != nil {
		return Result{}, err
	}

	if signer != notary {
		return Result{}, errorsmod.Wrapf(ErrInvalidSignature, "signer %s is not the trusted notary", signer)
	}

	return Result{
		OwnsGood:       bundle.OwnsGood,
		Timestamp:      bundle.Timestamp,
		TranscriptHash: bundle.TranscriptHash,
	}, nil
}

// SetNotary replaces the trusted notary identity unconditionally. The new
// identity applies to all subsequent verifications; no history is retained.
func (v *Verifier) SetNotary(caller, notary common.Address) error {
	if notary == (common.Address{}) {
		return errorsmod.Wrap(ErrInvalidNotary, "notary cannot be the zero address")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if caller != v.authority {
		return errorsmod.Wrapf(ErrUnauthorized, "caller %s", caller)
	}

	v.Logger().Info("trusted notary rotated", "old", v.notary, "new", notary)
	v.notary = notary

	return nil
}

// Notary returns the currently trusted notary identity.
func (v *Verifier) Notary() common.Address {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.notary
}

// OriginName returns the expected attestation origin.
func (v *Verifier) OriginName() string {
	return v.originName
}
