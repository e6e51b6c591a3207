package runtime

import (
	"errors"

	"escrow-program-sol/internal/types"
)

// ErrNotEnoughAccountKeys 表示程序按位置读取账户时，调用方提供的账户数量不足
var ErrNotEnoughAccountKeys = errors.New("not enough account keys")

// Account 表示链上账户的持久状态（lamports + data + owner）。
// data 与 lamports 的修改只在一次 attempt 成功提交后对外可见。
type Account struct {
	Lamports   uint64
	Data       []byte
	Owner      types.Pubkey
	Executable bool
}

// Clone 深拷贝账户状态，用于 attempt 级别的快照/回滚
func (a *Account) Clone() *Account {
	data := make([]byte, len(a.Data))
	copy(data, a.Data)
	return &Account{
		Lamports:   a.Lamports,
		Data:       data,
		Owner:      a.Owner,
		Executable: a.Executable,
	}
}

// AccountInfo 表示一次调用中程序可见的账户视图：
// Key 与 attempt 级别的签名/可写标记，加上对底层账户状态的引用。
// 程序不得跨调用持有 AccountInfo —— 每次 attempt 由 runtime 重新构造。
type AccountInfo struct {
	Key        types.Pubkey
	IsSigner   bool
	IsWritable bool
	Account    *Account
}

// AccountIter 按位置顺序消费账户列表（对应链上指令的 positional accounts）
type AccountIter struct {
	accounts []*AccountInfo
	pos      int
}

func NewAccountIter(accounts []*AccountInfo) *AccountIter {
	return &AccountIter{accounts: accounts}
}

// Next 返回下一个账户，耗尽时返回 ErrNotEnoughAccountKeys
func (it *AccountIter) Next() (*AccountInfo, error) {
	if it.pos >= len(it.accounts) {
		return nil, ErrNotEnoughAccountKeys
	}
	info := it.accounts[it.pos]
	it.pos++
	return info, nil
}
