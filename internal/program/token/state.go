package token

import (
	"encoding/binary"

	"escrow-program-sol/internal/types"
)

// AccountSize SPL Token 账户的固定序列化长度
const AccountSize = 165

// 账户状态（state 字段取值）
const (
	StateUninitialized uint8 = 0
	StateInitialized   uint8 = 1
	StateFrozen        uint8 = 2
)

// 165 字节布局中各字段的偏移（与 SPL Token 完全一致，保证外部工具可读）：
// mint(32) | owner(32) | amount(8 LE) | delegate COption(36) |
// state(1) | is_native COption(12) | delegated_amount(8) | close_authority COption(36)
const (
	mintOffset   = 0
	ownerOffset  = 32
	amountOffset = 64
	stateOffset  = 108
)

// Account 表示一个 SPL Token 账户的内存态。
// 本实现不支持 delegate / native / close_authority 扩展字段，布局中对应区域保持全零。
type Account struct {
	Mint   types.Pubkey
	Owner  types.Pubkey
	Amount uint64
	State  uint8
}

func (a *Account) IsInitialized() bool {
	return a.State != StateUninitialized
}

// Pack 将账户状态写入 165 字节缓冲区
func (a *Account) Pack(buf []byte) error {
	if len(buf) < AccountSize {
		return ErrInvalidAccountData
	}
	copy(buf[mintOffset:mintOffset+32], a.Mint[:])
	copy(buf[ownerOffset:ownerOffset+32], a.Owner[:])
	binary.LittleEndian.PutUint64(buf[amountOffset:amountOffset+8], a.Amount)
	buf[stateOffset] = a.State
	return nil
}

// UnpackAccount 从账户数据还原 Token 账户状态
func UnpackAccount(data []byte) (Account, error) {
	if len(data) < AccountSize {
		return Account{}, ErrInvalidAccountData
	}
	var acc Account
	copy(acc.Mint[:], data[mintOffset:mintOffset+32])
	copy(acc.Owner[:], data[ownerOffset:ownerOffset+32])
	acc.Amount = binary.LittleEndian.Uint64(data[amountOffset : amountOffset+8])
	acc.State = data[stateOffset]
	return acc, nil
}
