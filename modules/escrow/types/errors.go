package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Trade escrow sentinel errors
var (
	ErrInvalidInput        = errorsmod.Register(ModuleName, 2, "invalid trade input")
	ErrTradeNotFound       = errorsmod.Register(ModuleName, 3, "trade not found")
	ErrInvalidState        = errorsmod.Register(ModuleName, 4, "operation not permitted in current trade status")
	ErrUnauthorized        = errorsmod.Register(ModuleName, 5, "caller is not authorized")
	ErrTimeNotElapsed      = errorsmod.Register(ModuleName, 6, "required time has not elapsed")
	ErrTransferFailed      = errorsmod.Register(ModuleName, 7, "funds transfer failed")
	ErrInvalidStakePercent = errorsmod.Register(ModuleName, 8, "stake percent cannot exceed 100")
)
