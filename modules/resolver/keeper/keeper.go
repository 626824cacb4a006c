package keeper

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	"github.com/gametrade/zkescrow/modules/attestation"
	escrowtypes "github.com/gametrade/zkescrow/modules/escrow/types"
	"github.com/gametrade/zkescrow/modules/resolver/types"
)

// Keeper binds verified attestations to trade dispute windows and triggers
// settlement. VerifyAndResolve is deliberately callable by anyone:
// correctness depends only on possessing a valid, correctly-windowed
// attestation, not on caller identity.
type Keeper struct {
	logger   log.Logger
	verifier types.AttestationVerifier
	ledger   types.TradeLedger
	clock    escrowtypes.Clock

	// identity is the resolver address registered with the ledger; it is
	// passed as the caller on proof resolutions.
	identity common.Address
}

// NewKeeper creates a new settlement resolver Keeper instance.
func NewKeeper(logger log.Logger, verifier types.AttestationVerifier, ledger types.TradeLedger, clock escrowtypes.Clock, identity common.Address) Keeper {
	return Keeper{
		logger:   logger,
		verifier: verifier,
		ledger:   ledger,
		clock:    clock,
		identity: identity,
	}
}

// Logger returns a module-specific logger.
func (k Keeper) Logger() log.Logger {
	return k.logger.With("module", "x/"+types.ModuleName)
}

// Identity returns the resolver identity used on ledger resolutions.
func (k Keeper) Identity() common.Address {
	return k.identity
}

// VerifyAndResolve verifies the bundle, checks its timestamp against the
// trade's dispute window (all bounds inclusive) and resolves the trade from
// the attested ownership outcome. Verifier and ledger failures propagate
// unchanged.
func (k Keeper) VerifyAndResolve(id uint64, bundle attestation.Bundle) error {
	result, err := k.verifier.Verify(bundle)
	if err != nil {
		return err
	}

	ackAt, err := k.ledger.AcknowledgedAt(id)
	if err != nil {
		return err
	}

	// bundle timestamps are whole unix seconds, so the bounds are compared
	// at the same granularity: a clock reading with sub-second digits must
	// not exclude a proof stamped within the same second
	ts := time.Unix(int64(result.Timestamp), 0).UTC()
	if ts.Unix() < ackAt.Unix() {
		return errorsmod.Wrapf(types.ErrTimestampBeforeAck, "proof at %s, acknowledged at %s", ts, ackAt)
	}
	if windowEnd := ackAt.Add(escrowtypes.DisputeWindow); ts.Unix() > windowEnd.Unix() {
		return errorsmod.Wrapf(types.ErrTimestampAfterWindow, "proof at %s, window closed at %s", ts, windowEnd)
	}
	if now := k.clock.Now(); ts.Unix() > now.Unix() {
		return errorsmod.Wrapf(types.ErrTimestampInFuture, "proof at %s, current time %s", ts, now)
	}

	if err := k.ledger.ResolveWithProof(k.identity, id, result.OwnsGood); err != nil {
		return err
	}

	k.Logger().Info("trade settled by proof",
		escrowtypes.AttributeKeyTradeID, id,
		escrowtypes.AttributeKeyOwnsGood, result.OwnsGood,
		"transcript_hash", result.TranscriptHash,
	)

	return nil
}
