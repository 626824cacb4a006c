package types

import (
	errorsmod "cosmossdk.io/errors"
)

const ModuleName = "resolver"

// Settlement resolver sentinel errors
var (
	ErrTimestampBeforeAck   = errorsmod.Register(ModuleName, 2, "proof timestamp precedes acknowledgment")
	ErrTimestampAfterWindow = errorsmod.Register(ModuleName, 3, "proof timestamp after dispute window")
	ErrTimestampInFuture    = errorsmod.Register(ModuleName, 4, "proof timestamp is in the future")
)
