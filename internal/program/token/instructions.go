package token

import (
	"encoding/binary"

	"escrow-program-sol/internal/runtime"
	"escrow-program-sol/internal/types"

	sdktoken "github.com/blocto/solana-go-sdk/program/token"
)

// NewTransferInstruction 构造 Transfer 指令：
// 从 source 向 dest 转移 amount，由 authority 签名授权。
func NewTransferInstruction(tokenProgram, source, dest, authority types.Pubkey, amount uint64) runtime.Instruction {
	data := make([]byte, 9)
	data[0] = byte(sdktoken.InstructionTransfer)
	binary.LittleEndian.PutUint64(data[1:9], amount)

	return runtime.Instruction{
		ProgramID: tokenProgram,
		Accounts: []runtime.AccountMeta{
			{Pubkey: source, IsWritable: true},
			{Pubkey: dest, IsWritable: true},
			{Pubkey: authority, IsSigner: true},
		},
		Data: data,
	}
}

// NewSetAuthorityInstruction 构造 SetAuthority(AccountOwner) 指令：
// 将 account 的持有权从 currentAuthority 移交给 newAuthority。
func NewSetAuthorityInstruction(tokenProgram, account, newAuthority, currentAuthority types.Pubkey) runtime.Instruction {
	// data: tag(1) | authority_type(1) | COption tag(1) | new_authority(32)
	data := make([]byte, 35)
	data[0] = byte(sdktoken.InstructionSetAuthority)
	data[1] = byte(sdktoken.AuthorityTypeAccountOwner)
	data[2] = 1
	copy(data[3:35], newAuthority[:])

	return runtime.Instruction{
		ProgramID: tokenProgram,
		Accounts: []runtime.AccountMeta{
			{Pubkey: account, IsWritable: true},
			{Pubkey: currentAuthority, IsSigner: true},
		},
		Data: data,
	}
}

// NewCloseAccountInstruction 构造 CloseAccount 指令：
// 关闭余额为零的 account，并把其 lamports 退还给 dest。
func NewCloseAccountInstruction(tokenProgram, account, dest, authority types.Pubkey) runtime.Instruction {
	return runtime.Instruction{
		ProgramID: tokenProgram,
		Accounts: []runtime.AccountMeta{
			{Pubkey: account, IsWritable: true},
			{Pubkey: dest, IsWritable: true},
			{Pubkey: authority, IsSigner: true},
		},
		Data: []byte{byte(sdktoken.InstructionCloseAccount)},
	}
}
