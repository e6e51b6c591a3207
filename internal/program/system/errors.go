package system

import "errors"

var (
	ErrInvalidInstruction   = errors.New("system: invalid instruction data")
	ErrMissingSignature     = errors.New("system: missing required signature")
	ErrAccountAlreadyInUse  = errors.New("system: account already in use")
	ErrInsufficientFunds    = errors.New("system: insufficient funds")
	ErrInvalidAccountOwner  = errors.New("system: account not owned by system program")
	ErrInvalidDataLength    = errors.New("system: requested data length exceeds limit")
	ErrLamportsOverflow     = errors.New("system: lamports overflow")
)
