package attestation

import (
	errorsmod "cosmossdk.io/errors"
)

const ModuleName = "attestation"

// Attestation verifier sentinel errors
var (
	ErrInvalidBundle     = errorsmod.Register(ModuleName, 2, "invalid attestation bundle")
	ErrInvalidServerName = errorsmod.Register(ModuleName, 3, "server name mismatch")
	ErrInvalidSignature  = errorsmod.Register(ModuleName, 4, "invalid notary signature")
	ErrInvalidNotary     = errorsmod.Register(ModuleName, 5, "invalid notary identity")
	ErrUnauthorized      = errorsmod.Register(ModuleName, 6, "caller is not the verifier authority")
)
