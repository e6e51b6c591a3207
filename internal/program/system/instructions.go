package system

import (
	"encoding/binary"

	"escrow-program-sol/internal/runtime"
	"escrow-program-sol/internal/types"
)

// System 指令 discriminator（u32 小端，与链上 System Program 对齐）
const (
	InstructionCreateAccount uint32 = 0
	InstructionAssign        uint32 = 1
	InstructionTransfer      uint32 = 2
	InstructionAllocate      uint32 = 8
)

// NewCreateAccountInstruction 创建并注资一个新账户：扣减 from，按 space 分配数据，归属 owner。
// from 与新账户都必须签名。
func NewCreateAccountInstruction(systemProgram, from, newAccount types.Pubkey, lamports, space uint64, owner types.Pubkey) runtime.Instruction {
	data := make([]byte, 4+8+8+32)
	binary.LittleEndian.PutUint32(data[0:4], InstructionCreateAccount)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	binary.LittleEndian.PutUint64(data[12:20], space)
	copy(data[20:52], owner[:])

	return runtime.Instruction{
		ProgramID: systemProgram,
		Accounts: []runtime.AccountMeta{
			{Pubkey: from, IsSigner: true, IsWritable: true},
			{Pubkey: newAccount, IsSigner: true, IsWritable: true},
		},
		Data: data,
	}
}

// NewAssignInstruction 把系统账户的归属移交给 owner（账户本身签名）
func NewAssignInstruction(systemProgram, account, owner types.Pubkey) runtime.Instruction {
	data := make([]byte, 4+32)
	binary.LittleEndian.PutUint32(data[0:4], InstructionAssign)
	copy(data[4:36], owner[:])

	return runtime.Instruction{
		ProgramID: systemProgram,
		Accounts: []runtime.AccountMeta{
			{Pubkey: account, IsSigner: true, IsWritable: true},
		},
		Data: data,
	}
}

// NewTransferInstruction 在系统账户间转移 lamports
func NewTransferInstruction(systemProgram, from, to types.Pubkey, lamports uint64) runtime.Instruction {
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data[0:4], InstructionTransfer)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	return runtime.Instruction{
		ProgramID: systemProgram,
		Accounts: []runtime.AccountMeta{
			{Pubkey: from, IsSigner: true, IsWritable: true},
			{Pubkey: to, IsWritable: true},
		},
		Data: data,
	}
}

// NewAllocateInstruction 为已注资的系统账户分配 space 字节数据
func NewAllocateInstruction(systemProgram, account types.Pubkey, space uint64) runtime.Instruction {
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data[0:4], InstructionAllocate)
	binary.LittleEndian.PutUint64(data[4:12], space)

	return runtime.Instruction{
		ProgramID: systemProgram,
		Accounts: []runtime.AccountMeta{
			{Pubkey: account, IsSigner: true, IsWritable: true},
		},
		Data: data,
	}
}
