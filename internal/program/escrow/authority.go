package escrow

import (
	"escrow-program-sol/internal/runtime"
	"escrow-program-sol/internal/types"
)

// AuthoritySeed 程序级固定种子：同一程序实例的所有 escrow 共用一个托管授权地址。
// 推导出的地址不存在对应私钥，只有程序自身能通过 seeds+bump 向 runtime 证明授权。
const AuthoritySeed = "escrow"

// DeriveAuthority 按固定种子 + 程序地址推导托管授权 PDA 及 bump。
// 结果不落盘，每次调用重新推导。
func DeriveAuthority(programID types.Pubkey) (types.Pubkey, uint8, error) {
	return runtime.FindProgramAddress([][]byte{[]byte(AuthoritySeed)}, programID)
}

// AuthoritySignerSeeds 返回 InvokeSigned 所需的代签 seeds（含 bump）
func AuthoritySignerSeeds(bump uint8) [][]byte {
	return [][]byte{[]byte(AuthoritySeed), {bump}}
}
