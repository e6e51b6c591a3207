package token

import "errors"

var (
	ErrInvalidInstruction   = errors.New("invalid token instruction")
	ErrInvalidAccountData   = errors.New("invalid token account data")
	ErrInvalidAccountOwner  = errors.New("account not owned by token program")
	ErrUninitializedAccount = errors.New("token account uninitialized")
	ErrAccountFrozen        = errors.New("token account frozen")
	ErrOwnerMismatch        = errors.New("token account owner mismatch")
	ErrMissingSignature     = errors.New("authority signature missing")
	ErrInsufficientFunds    = errors.New("insufficient token funds")
	ErrNonZeroBalance       = errors.New("token account balance must be zero")
	ErrAmountOverflow       = errors.New("token amount overflow")
)
