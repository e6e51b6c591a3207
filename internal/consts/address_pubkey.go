package consts

import (
	"escrow-program-sol/internal/types"
)

// 公钥形式的地址常量（types.Pubkey），用于链上比对、性能优化等场景。
var (
	// Programs
	SystemProgram          types.Pubkey
	TokenProgram           types.Pubkey
	TokenProgram2022       types.Pubkey
	AssociatedTokenProgram types.Pubkey

	// Sysvars
	SysvarRent types.Pubkey

	// 原生 SOL 的 wrapped mint
	WSOLMint types.Pubkey
)

// init 自动将 base58 字符串地址转换为 types.Pubkey
func init() {
	SystemProgram = types.PubkeyFromBase58(SystemProgramStr)
	TokenProgram = types.PubkeyFromBase58(TokenProgramStr)
	TokenProgram2022 = types.PubkeyFromBase58(TokenProgram2022Str)
	AssociatedTokenProgram = types.PubkeyFromBase58(AssociatedTokenProgramStr)

	SysvarRent = types.PubkeyFromBase58(SysvarRentStr)

	WSOLMint = types.PubkeyFromBase58(WSOLMintStr)
}
