package runtime

import (
	"errors"
	"fmt"

	"escrow-program-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
)

var (
	ErrUnknownProgram      = errors.New("unknown program")
	ErrMissingAccount      = errors.New("instruction references an account outside the transaction")
	ErrPrivilegeEscalation = errors.New("instruction escalates account privileges")
	ErrCallDepthExceeded   = errors.New("max invoke depth exceeded")
)

// maxInvokeDepth CPI 最大嵌套层数
const maxInvokeDepth = 4

// AccountMeta 描述指令引用的账户及其权限标记
type AccountMeta struct {
	Pubkey     types.Pubkey
	IsSigner   bool
	IsWritable bool
}

// Instruction 表示一条待执行的指令：目标程序、按位置排列的账户、以及不透明数据
type Instruction struct {
	ProgramID types.Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// Program 是 runtime 可执行的原生程序接口。
// Execute 在一次 attempt 内同步运行完毕；返回 error 时整个 attempt 的写入由 runtime 丢弃。
type Program interface {
	Execute(ctx *InvokeContext, programID types.Pubkey, accounts []*AccountInfo, data []byte) error
}

// InvokeContext 承载一次 attempt 的执行环境：程序注册表、attempt 可见账户、CPI 状态。
// 不跨 attempt 复用。
type InvokeContext struct {
	programs map[types.Pubkey]Program
	accounts map[types.Pubkey]*AccountInfo
	current  types.Pubkey // 当前正在执行的程序（PDA 代签以此为推导域）
	depth    int
}

func newInvokeContext(programs map[types.Pubkey]Program, accounts map[types.Pubkey]*AccountInfo) *InvokeContext {
	return &InvokeContext{
		programs: programs,
		accounts: accounts,
	}
}

// run 解析指令账户并执行目标程序。
// pdaSigners 中的地址在本层调用中视为已签名（仅 InvokeSigned 传入）。
func (ctx *InvokeContext) run(ix Instruction, pdaSigners map[types.Pubkey]bool) error {
	if ctx.depth >= maxInvokeDepth {
		return ErrCallDepthExceeded
	}
	program, ok := ctx.programs[ix.ProgramID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, ix.ProgramID)
	}

	infos := make([]*AccountInfo, 0, len(ix.Accounts))
	for _, meta := range ix.Accounts {
		base, ok := ctx.accounts[meta.Pubkey]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingAccount, meta.Pubkey)
		}
		// 权限只能收窄，不能放大：signer 必须来自 attempt 签名或 PDA 代签
		if meta.IsSigner && !base.IsSigner && !pdaSigners[meta.Pubkey] {
			return fmt.Errorf("%w: %s marked signer", ErrPrivilegeEscalation, meta.Pubkey)
		}
		if meta.IsWritable && !base.IsWritable {
			return fmt.Errorf("%w: %s marked writable", ErrPrivilegeEscalation, meta.Pubkey)
		}
		infos = append(infos, &AccountInfo{
			Key:        meta.Pubkey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			Account:    base.Account,
		})
	}

	prevProgram, prevDepth := ctx.current, ctx.depth
	ctx.current, ctx.depth = ix.ProgramID, ctx.depth+1
	err := program.Execute(ctx, ix.ProgramID, infos, ix.Data)
	ctx.current, ctx.depth = prevProgram, prevDepth
	return err
}

// Invoke 发起一次普通 CPI：标记为 signer 的账户必须在本次 attempt 中已被签名
func (ctx *InvokeContext) Invoke(ix Instruction) error {
	return ctx.run(ix, nil)
}

// InvokeSigned 以 PDA seeds 代签发起 CPI。
// 每组 seeds（含 bump）按当前程序推导出一个 program address，
// 该地址在内层调用中视为已签名 —— 这就是"无私钥授权"的证明方式。
func (ctx *InvokeContext) InvokeSigned(ix Instruction, signerSeeds ...[][]byte) error {
	pdaSigners := make(map[types.Pubkey]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		pda, err := CreateProgramAddress(seeds, ctx.current)
		if err != nil {
			return err
		}
		pdaSigners[pda] = true
	}
	return ctx.run(ix, pdaSigners)
}

// CreateProgramAddress 按 seeds + programID 推导 program address（seeds 需已含 bump）
func CreateProgramAddress(seeds [][]byte, programID types.Pubkey) (types.Pubkey, error) {
	pda, err := common.CreateProgramAddress(seeds, common.PublicKeyFromBytes(programID.Bytes()))
	if err != nil {
		return types.Pubkey{}, fmt.Errorf("create program address: %w", err)
	}
	return types.PubkeyFromBytes(pda.Bytes()), nil
}

// FindProgramAddress 搜索 bump，返回第一个不在 ed25519 曲线上的推导地址及其 bump
func FindProgramAddress(seeds [][]byte, programID types.Pubkey) (types.Pubkey, uint8, error) {
	pda, bump, err := common.FindProgramAddress(seeds, common.PublicKeyFromBytes(programID.Bytes()))
	if err != nil {
		return types.Pubkey{}, 0, fmt.Errorf("find program address: %w", err)
	}
	return types.PubkeyFromBytes(pda.Bytes()), bump, nil
}
