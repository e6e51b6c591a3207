package runtime

import (
	"errors"
	"sync"

	"escrow-program-sol/internal/consts"
	"escrow-program-sol/internal/types"
)

var (
	ErrDuplicateTransaction = errors.New("transaction already executed")
	ErrNoInstructions       = errors.New("transaction has no instructions")
)

// Transaction 表示一次 attempt：host 已完成验签的签名者列表 + 按序执行的指令。
// Signature 作为 attempt 的唯一标识，用于幂等去重。
type Transaction struct {
	Signature    types.Hash
	Signers      []types.Pubkey
	Instructions []Instruction
}

// Bank 是单节点的账户表与事务执行器。
// 一次 ExecuteTransaction 即一次 attempt：期间引用的账户全程独占，
// 任一指令失败则丢弃本次 attempt 的全部写入（all-or-nothing）。
type Bank struct {
	mu       sync.Mutex
	accounts map[types.Pubkey]*Account
	programs map[types.Pubkey]Program
	executed map[types.Hash]struct{}
}

// NewBank 创建 Bank 并预置 rent sysvar 账户
func NewBank() *Bank {
	b := &Bank{
		accounts: make(map[types.Pubkey]*Account),
		programs: make(map[types.Pubkey]Program),
		executed: make(map[types.Hash]struct{}),
	}
	b.accounts[consts.SysvarRent] = &Account{
		Lamports: 1,
		Data:     DefaultRent().Pack(),
		Owner:    consts.SystemProgram,
	}
	return b
}

// RegisterProgram 注册一个可执行的原生程序
func (b *Bank) RegisterProgram(id types.Pubkey, p Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.programs[id] = p
	b.accounts[id] = &Account{Lamports: 1, Owner: consts.SystemProgram, Executable: true}
}

// SetAccount 直接写入账户状态（genesis 与测试使用）
func (b *Bank) SetAccount(key types.Pubkey, acc *Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[key] = acc.Clone()
}

// GetAccount 返回账户状态的拷贝，账户不存在时返回 false
func (b *Bank) GetAccount(key types.Pubkey) (*Account, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[key]
	if !ok {
		return nil, false
	}
	return acc.Clone(), true
}

// ExecuteTransaction 串行执行一次 attempt。
// 执行前对所有引用账户做快照，任一指令失败即整体回滚并返回错误；
// 成功后记录 Signature 用于重复提交去重，并回收归零账户。
func (b *Bank) ExecuteTransaction(tx *Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(tx.Instructions) == 0 {
		return ErrNoInstructions
	}
	if _, done := b.executed[tx.Signature]; done {
		return ErrDuplicateTransaction
	}

	signerSet := make(map[types.Pubkey]bool, len(tx.Signers))
	for _, s := range tx.Signers {
		signerSet[s] = true
	}

	// 收集引用账户并做快照；缺失账户按系统账户零值补齐
	snapshots := make(map[types.Pubkey]*Account)
	infos := make(map[types.Pubkey]*AccountInfo)
	touch := func(meta AccountMeta) {
		if _, seen := infos[meta.Pubkey]; !seen {
			acc, ok := b.accounts[meta.Pubkey]
			if !ok {
				acc = &Account{Owner: consts.SystemProgram}
				b.accounts[meta.Pubkey] = acc
			}
			snapshots[meta.Pubkey] = acc.Clone()
			infos[meta.Pubkey] = &AccountInfo{
				Key:      meta.Pubkey,
				IsSigner: signerSet[meta.Pubkey],
				Account:  acc,
			}
		}
		if meta.IsWritable {
			infos[meta.Pubkey].IsWritable = true
		}
	}
	for _, ix := range tx.Instructions {
		for _, meta := range ix.Accounts {
			touch(meta)
		}
	}

	ctx := newInvokeContext(b.programs, infos)
	for _, ix := range tx.Instructions {
		if err := ctx.run(ix, nil); err != nil {
			// 回滚：恢复所有快照，本次 attempt 不留任何痕迹
			for key, snap := range snapshots {
				b.accounts[key] = snap
			}
			b.pruneZeroAccounts(snapshots)
			return err
		}
	}

	b.executed[tx.Signature] = struct{}{}
	b.pruneZeroAccounts(snapshots)
	return nil
}

// pruneZeroAccounts 回收 attempt 结束后归零的账户（0 lamports 且无数据）
func (b *Bank) pruneZeroAccounts(touched map[types.Pubkey]*Account) {
	for key := range touched {
		if acc, ok := b.accounts[key]; ok && acc.Lamports == 0 && len(acc.Data) == 0 {
			delete(b.accounts, key)
		}
	}
}
