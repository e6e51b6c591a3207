package system

import (
	"encoding/binary"
	"fmt"

	"escrow-program-sol/internal/runtime"
	"escrow-program-sol/internal/types"
)

// 单账户数据上限（对齐链上 MAX_PERMITTED_DATA_LENGTH）
const maxDataLength = 10 * 1024 * 1024

// Program 是 System Program 的原生实现：账户的创建、注资、数据分配与归属移交。
// 所有账户在被 Assign 给其它程序之前都归本程序所有。
type Program struct{}

func NewProgram() *Program {
	return &Program{}
}

// Execute 按前 4 字节 discriminator（u32 小端）分发 System 指令
func (p *Program) Execute(ctx *runtime.InvokeContext, programID types.Pubkey, accounts []*runtime.AccountInfo, data []byte) error {
	if len(data) < 4 {
		return ErrInvalidInstruction
	}

	switch binary.LittleEndian.Uint32(data[0:4]) {
	case InstructionCreateAccount:
		if len(data) < 52 {
			return ErrInvalidInstruction
		}
		lamports := binary.LittleEndian.Uint64(data[4:12])
		space := binary.LittleEndian.Uint64(data[12:20])
		owner := types.PubkeyFromBytes(data[20:52])
		return p.createAccount(programID, accounts, lamports, space, owner)

	case InstructionAssign:
		if len(data) < 36 {
			return ErrInvalidInstruction
		}
		return p.assign(programID, accounts, types.PubkeyFromBytes(data[4:36]))

	case InstructionTransfer:
		if len(data) < 12 {
			return ErrInvalidInstruction
		}
		return p.transfer(programID, accounts, binary.LittleEndian.Uint64(data[4:12]))

	case InstructionAllocate:
		if len(data) < 12 {
			return ErrInvalidInstruction
		}
		return p.allocate(programID, accounts, binary.LittleEndian.Uint64(data[4:12]))

	default:
		return fmt.Errorf("%w: discriminator=%d", ErrInvalidInstruction, binary.LittleEndian.Uint32(data[0:4]))
	}
}

// createAccount 从 from 扣款，创建 space 字节、归属 owner 的新账户。
// 新账户必须是全新的：任何 lamports、数据或非系统归属都视为已被占用。
func (p *Program) createAccount(programID types.Pubkey, accounts []*runtime.AccountInfo, lamports, space uint64, owner types.Pubkey) error {
	it := runtime.NewAccountIter(accounts)
	from, err := it.Next()
	if err != nil {
		return err
	}
	newAccount, err := it.Next()
	if err != nil {
		return err
	}

	// 双签：付款方授权扣款，新账户持有人证明掌握该地址
	if !from.IsSigner || !newAccount.IsSigner {
		return ErrMissingSignature
	}
	if newAccount.Account.Lamports != 0 || len(newAccount.Account.Data) != 0 ||
		newAccount.Account.Owner != programID {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyInUse, newAccount.Key)
	}
	if space > maxDataLength {
		return ErrInvalidDataLength
	}
	if from.Account.Lamports < lamports {
		return ErrInsufficientFunds
	}

	from.Account.Lamports -= lamports
	newAccount.Account.Lamports = lamports
	newAccount.Account.Data = make([]byte, space)
	newAccount.Account.Owner = owner
	return nil
}

// assign 把系统账户移交给新 owner
func (p *Program) assign(programID types.Pubkey, accounts []*runtime.AccountInfo, owner types.Pubkey) error {
	it := runtime.NewAccountIter(accounts)
	account, err := it.Next()
	if err != nil {
		return err
	}
	if !account.IsSigner {
		return ErrMissingSignature
	}
	if account.Account.Owner != programID {
		return fmt.Errorf("%w: %s", ErrInvalidAccountOwner, account.Key)
	}

	account.Account.Owner = owner
	return nil
}

// transfer 在系统账户间转移 lamports（checked 运算）
func (p *Program) transfer(programID types.Pubkey, accounts []*runtime.AccountInfo, lamports uint64) error {
	it := runtime.NewAccountIter(accounts)
	from, err := it.Next()
	if err != nil {
		return err
	}
	to, err := it.Next()
	if err != nil {
		return err
	}

	if !from.IsSigner {
		return ErrMissingSignature
	}
	// 只能扣减系统账户：程序账户的 lamports 由其 owner 程序管辖
	if from.Account.Owner != programID {
		return fmt.Errorf("%w: %s", ErrInvalidAccountOwner, from.Key)
	}
	if from.Account.Lamports < lamports {
		return ErrInsufficientFunds
	}
	if from.Key == to.Key {
		return nil
	}
	newLamports := to.Account.Lamports + lamports
	if newLamports < to.Account.Lamports {
		return ErrLamportsOverflow
	}

	from.Account.Lamports -= lamports
	to.Account.Lamports = newLamports
	return nil
}

// allocate 为空数据的系统账户分配 space 字节
func (p *Program) allocate(programID types.Pubkey, accounts []*runtime.AccountInfo, space uint64) error {
	it := runtime.NewAccountIter(accounts)
	account, err := it.Next()
	if err != nil {
		return err
	}
	if !account.IsSigner {
		return ErrMissingSignature
	}
	if account.Account.Owner != programID || len(account.Account.Data) != 0 {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyInUse, account.Key)
	}
	if space > maxDataLength {
		return ErrInvalidDataLength
	}

	account.Account.Data = make([]byte, space)
	return nil
}
