package escrow

import "errors"

// 所有错误均为终态：第一个失败的前置条件立即中止本次 attempt，
// runtime 丢弃全部写入，调用方修正输入后整体重新提交。
var (
	ErrInvalidInstruction        = errors.New("invalid escrow instruction")
	ErrMissingRequiredSignature  = errors.New("missing required signature")
	ErrNotRentExempt             = errors.New("escrow account not rent exempt")
	ErrAccountAlreadyInitialized = errors.New("escrow account already initialized")
	ErrInvalidAccountData        = errors.New("account does not match escrow record")
	ErrAmountMismatch            = errors.New("amount does not match expected amount")
	ErrAmountOverflow            = errors.New("lamport amount overflow")
	ErrIncorrectProgramID        = errors.New("account owned by unexpected program")
)
