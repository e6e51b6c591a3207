package token

import (
	"encoding/binary"
	"fmt"

	"escrow-program-sol/internal/consts"
	"escrow-program-sol/internal/runtime"
	"escrow-program-sol/internal/types"

	sdktoken "github.com/blocto/solana-go-sdk/program/token"
)

// Engine 是 SPL Token 程序的原生实现，承担外部 token-transfer 服务的三个契约操作：
// Transfer / SetAuthority / CloseAccount。余额、持有权等簿记完全由本程序维护，
// escrow 程序只通过 CPI 消费这些操作。
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Execute 按首字节 discriminator 分发 Token 指令
func (e *Engine) Execute(ctx *runtime.InvokeContext, programID types.Pubkey, accounts []*runtime.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return ErrInvalidInstruction
	}

	switch data[0] {
	case byte(sdktoken.InstructionTransfer):
		if len(data) < 9 {
			return ErrInvalidInstruction
		}
		amount := binary.LittleEndian.Uint64(data[1:9])
		return e.transfer(programID, accounts, amount)

	case byte(sdktoken.InstructionSetAuthority):
		return e.setAuthority(programID, accounts, data)

	case byte(sdktoken.InstructionCloseAccount):
		return e.closeAccount(programID, accounts)

	default:
		return fmt.Errorf("%w: discriminator=%d", ErrInvalidInstruction, data[0])
	}
}

// transfer 将 amount 从 source 转移到 dest，要求 authority 为 source 持有者且已签名。
// 余额增减使用 checked 运算，溢出即失败。
func (e *Engine) transfer(programID types.Pubkey, accounts []*runtime.AccountInfo, amount uint64) error {
	it := runtime.NewAccountIter(accounts)
	sourceInfo, err := it.Next()
	if err != nil {
		return err
	}
	destInfo, err := it.Next()
	if err != nil {
		return err
	}
	authority, err := it.Next()
	if err != nil {
		return err
	}

	source, err := e.loadAccount(programID, sourceInfo)
	if err != nil {
		return err
	}
	dest, err := e.loadAccount(programID, destInfo)
	if err != nil {
		return err
	}
	if err := e.checkAuthority(&source, authority); err != nil {
		return err
	}

	if source.Mint != dest.Mint {
		return fmt.Errorf("%w: mint mismatch", ErrInvalidAccountData)
	}
	if source.Amount < amount {
		return ErrInsufficientFunds
	}
	// 自转账：校验照常，但不落盘。source 与 dest 指向同一缓冲，
	// 先写减、再写增会把减量覆盖掉，净效果变成凭空铸币
	if sourceInfo.Key == destInfo.Key {
		return nil
	}
	newDestAmount := dest.Amount + amount
	if newDestAmount < dest.Amount {
		return ErrAmountOverflow
	}

	source.Amount -= amount
	dest.Amount = newDestAmount
	if err := source.Pack(sourceInfo.Account.Data); err != nil {
		return err
	}
	return dest.Pack(destInfo.Account.Data)
}

// setAuthority 变更账户持有权，仅支持 AccountOwner 类型
func (e *Engine) setAuthority(programID types.Pubkey, accounts []*runtime.AccountInfo, data []byte) error {
	// data: tag(1) | authority_type(1) | COption tag(1) | new_authority(32)
	if len(data) < 3 {
		return ErrInvalidInstruction
	}
	if data[1] != byte(sdktoken.AuthorityTypeAccountOwner) {
		return fmt.Errorf("%w: unsupported authority type %d", ErrInvalidInstruction, data[1])
	}
	if data[2] != 1 || len(data) < 35 {
		return fmt.Errorf("%w: new authority required", ErrInvalidInstruction)
	}
	newAuthority := types.PubkeyFromBytes(data[3:35])

	it := runtime.NewAccountIter(accounts)
	accountInfo, err := it.Next()
	if err != nil {
		return err
	}
	currentAuthority, err := it.Next()
	if err != nil {
		return err
	}

	acc, err := e.loadAccount(programID, accountInfo)
	if err != nil {
		return err
	}
	if err := e.checkAuthority(&acc, currentAuthority); err != nil {
		return err
	}

	acc.Owner = newAuthority
	return acc.Pack(accountInfo.Account.Data)
}

// closeAccount 关闭零余额账户：lamports 退还 dest（checked 加法），账户数据清零
func (e *Engine) closeAccount(programID types.Pubkey, accounts []*runtime.AccountInfo) error {
	it := runtime.NewAccountIter(accounts)
	accountInfo, err := it.Next()
	if err != nil {
		return err
	}
	destInfo, err := it.Next()
	if err != nil {
		return err
	}
	authority, err := it.Next()
	if err != nil {
		return err
	}

	acc, err := e.loadAccount(programID, accountInfo)
	if err != nil {
		return err
	}
	if err := e.checkAuthority(&acc, authority); err != nil {
		return err
	}
	if acc.Amount != 0 {
		return ErrNonZeroBalance
	}
	// 退款目标不能是被关闭的账户本身，否则押金随清零一起蒸发
	if accountInfo.Key == destInfo.Key {
		return fmt.Errorf("%w: close destination is the account itself", ErrInvalidAccountData)
	}

	newLamports := destInfo.Account.Lamports + accountInfo.Account.Lamports
	if newLamports < destInfo.Account.Lamports {
		return ErrAmountOverflow
	}
	destInfo.Account.Lamports = newLamports
	accountInfo.Account.Lamports = 0
	accountInfo.Account.Data = nil
	accountInfo.Account.Owner = consts.SystemProgram
	return nil
}

// loadAccount 校验账户归属并还原 Token 账户状态
func (e *Engine) loadAccount(programID types.Pubkey, info *runtime.AccountInfo) (Account, error) {
	if info.Account.Owner != programID {
		return Account{}, fmt.Errorf("%w: %s", ErrInvalidAccountOwner, info.Key)
	}
	acc, err := UnpackAccount(info.Account.Data)
	if err != nil {
		return Account{}, err
	}
	if !acc.IsInitialized() {
		return Account{}, ErrUninitializedAccount
	}
	if acc.State == StateFrozen {
		return Account{}, ErrAccountFrozen
	}
	return acc, nil
}

// checkAuthority 要求 authority 与账户持有者一致且已签名（含 PDA 代签）
func (e *Engine) checkAuthority(acc *Account, authority *runtime.AccountInfo) error {
	if acc.Owner != authority.Key {
		return ErrOwnerMismatch
	}
	if !authority.IsSigner {
		return ErrMissingSignature
	}
	return nil
}
