package escrow

import (
	"escrow-program-sol/internal/consts"
	"escrow-program-sol/internal/pkg/logger"
	"escrow-program-sol/internal/program/token"
	"escrow-program-sol/internal/runtime"
	"escrow-program-sol/internal/types"
)

// Processor 是 escrow 程序入口，实现 runtime.Program。
// 无任何进程级状态：每次 attempt 的全部 escrow 数据都从调用方提供的账户重新还原。
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

// Execute 解码指令并分发到对应 handler
func (p *Processor) Execute(ctx *runtime.InvokeContext, programID types.Pubkey, accounts []*runtime.AccountInfo, data []byte) error {
	ix, err := UnpackInstruction(data)
	if err != nil {
		return err
	}

	switch ix.Tag {
	case TagInit:
		logger.Infof("[escrow] instruction: Init, expected_amount=%d", ix.Amount)
		return p.processInit(ctx, accounts, ix.Amount, programID)
	case TagExchange:
		logger.Infof("[escrow] instruction: Exchange, amount=%d", ix.Amount)
		return p.processExchange(ctx, accounts, ix.Amount, programID)
	case TagCancel:
		logger.Infof("[escrow] instruction: Cancel")
		return p.processCancel(ctx, accounts, programID)
	default:
		return ErrInvalidInstruction
	}
}

// processInit 创建 escrow 记录并把临时账户的持有权移交给程序授权 PDA。
// 账户顺序：initializer(signer) | temp | receive | escrow record | rent sysvar | token program
func (p *Processor) processInit(ctx *runtime.InvokeContext, accounts []*runtime.AccountInfo, amount uint64, programID types.Pubkey) error {
	it := runtime.NewAccountIter(accounts)

	initializer, err := it.Next()
	if err != nil {
		return err
	}
	if !initializer.IsSigner {
		return ErrMissingRequiredSignature
	}

	tempAccount, err := it.Next()
	if err != nil {
		return err
	}

	receiveAccount, err := it.Next()
	if err != nil {
		return err
	}
	// receive 账户必须归 token 程序所有（归属检查，不是存在性检查）
	if receiveAccount.Account.Owner != consts.TokenProgram {
		return ErrIncorrectProgramID
	}

	escrowAccount, err := it.Next()
	if err != nil {
		return err
	}
	// 记录账户必须归本程序所有，否则写入对宿主不具备约束力
	if escrowAccount.Account.Owner != programID {
		return ErrIncorrectProgramID
	}

	rentInfo, err := it.Next()
	if err != nil {
		return err
	}
	rent, err := runtime.RentFromAccountInfo(rentInfo)
	if err != nil {
		return err
	}
	if !rent.IsExempt(escrowAccount.Account.Lamports, len(escrowAccount.Account.Data)) {
		return ErrNotRentExempt
	}

	escrowInfo, err := UnpackEscrow(escrowAccount.Account.Data)
	if err != nil {
		return err
	}
	if escrowInfo.IsInitialized() {
		return ErrAccountAlreadyInitialized
	}

	escrowInfo.Initialized = true
	escrowInfo.Initializer = initializer.Key
	escrowInfo.TempAccount = tempAccount.Key
	escrowInfo.ReceiveAccount = receiveAccount.Key
	escrowInfo.ExpectedAmount = amount
	if err := escrowInfo.Pack(escrowAccount.Account.Data); err != nil {
		return err
	}

	pda, _, err := DeriveAuthority(programID)
	if err != nil {
		return err
	}

	tokenProgram, err := it.Next()
	if err != nil {
		return err
	}

	// 记录写入与授权移交由同一次 attempt 承载：要么都生效，要么都被丢弃
	ownerChange := token.NewSetAuthorityInstruction(tokenProgram.Key, tempAccount.Key, pda, initializer.Key)
	return ctx.Invoke(ownerChange)
}

// processExchange 原子完成六步成交协议。
// 账户顺序：taker(signer) | taker source | taker receive | pda temp |
// initializer main | initializer receive | escrow record | token program | pda authority
func (p *Processor) processExchange(ctx *runtime.InvokeContext, accounts []*runtime.AccountInfo, amount uint64, programID types.Pubkey) error {
	it := runtime.NewAccountIter(accounts)

	taker, err := it.Next()
	if err != nil {
		return err
	}
	if !taker.IsSigner {
		return ErrMissingRequiredSignature
	}

	takerSource, err := it.Next()
	if err != nil {
		return err
	}
	takerReceive, err := it.Next()
	if err != nil {
		return err
	}
	tempAccount, err := it.Next()
	if err != nil {
		return err
	}
	initializerMain, err := it.Next()
	if err != nil {
		return err
	}
	initializerReceive, err := it.Next()
	if err != nil {
		return err
	}
	escrowAccount, err := it.Next()
	if err != nil {
		return err
	}
	if escrowAccount.Account.Owner != programID {
		return ErrIncorrectProgramID
	}

	escrowInfo, err := UnpackEscrow(escrowAccount.Account.Data)
	if err != nil {
		return err
	}
	// 1. 记录与账户身份校验
	if !escrowInfo.IsInitialized() {
		return ErrInvalidAccountData
	}
	if escrowInfo.TempAccount != tempAccount.Key {
		return ErrInvalidAccountData
	}
	if escrowInfo.Initializer != initializerMain.Key {
		return ErrInvalidAccountData
	}
	if escrowInfo.ReceiveAccount != initializerReceive.Key {
		return ErrInvalidAccountData
	}

	// 2. 成交金额必须与记录一致
	if amount != escrowInfo.ExpectedAmount {
		return ErrAmountMismatch
	}

	tempState, err := token.UnpackAccount(tempAccount.Account.Data)
	if err != nil {
		return err
	}

	pda, bump, err := DeriveAuthority(programID)
	if err != nil {
		return err
	}

	tokenProgram, err := it.Next()
	if err != nil {
		return err
	}
	pdaAuthority, err := it.Next()
	if err != nil {
		return err
	}
	if pdaAuthority.Key != pda {
		return ErrInvalidAccountData
	}
	seeds := AuthoritySignerSeeds(bump)

	// 3. taker 自签：对手资产打给 initializer 的收款账户
	toInitializer := token.NewTransferInstruction(tokenProgram.Key, takerSource.Key, initializerReceive.Key, taker.Key, amount)
	if err := ctx.Invoke(toInitializer); err != nil {
		return err
	}

	// 4. PDA 代签：托管资产全额打给 taker 的收款账户
	toTaker := token.NewTransferInstruction(tokenProgram.Key, tempAccount.Key, takerReceive.Key, pda, tempState.Amount)
	if err := ctx.InvokeSigned(toTaker, seeds); err != nil {
		return err
	}

	// 5. 关闭临时账户，租金押金退还 initializer
	closeTemp := token.NewCloseAccountInstruction(tokenProgram.Key, tempAccount.Key, initializerMain.Key, pda)
	if err := ctx.InvokeSigned(closeTemp, seeds); err != nil {
		return err
	}

	// 6. 关闭 escrow 记录，终态，不可逆
	return closeRecord(initializerMain, escrowAccount)
}

// processCancel 单方撤回：托管资产退还 initializer，临时账户与记录全部关闭。
// 账户顺序：pda temp | initializer main(signer) | initializer receive |
// escrow record | token program | pda authority
func (p *Processor) processCancel(ctx *runtime.InvokeContext, accounts []*runtime.AccountInfo, programID types.Pubkey) error {
	it := runtime.NewAccountIter(accounts)

	tempAccount, err := it.Next()
	if err != nil {
		return err
	}
	initializerMain, err := it.Next()
	if err != nil {
		return err
	}
	// 身份相等不足以证明意愿：撤回必须由 initializer 本人签名
	if !initializerMain.IsSigner {
		return ErrMissingRequiredSignature
	}
	initializerReceive, err := it.Next()
	if err != nil {
		return err
	}
	escrowAccount, err := it.Next()
	if err != nil {
		return err
	}
	if escrowAccount.Account.Owner != programID {
		return ErrIncorrectProgramID
	}

	escrowInfo, err := UnpackEscrow(escrowAccount.Account.Data)
	if err != nil {
		return err
	}
	if !escrowInfo.IsInitialized() {
		return ErrInvalidAccountData
	}
	if escrowInfo.TempAccount != tempAccount.Key {
		return ErrInvalidAccountData
	}
	if escrowInfo.Initializer != initializerMain.Key {
		return ErrInvalidAccountData
	}

	tempState, err := token.UnpackAccount(tempAccount.Account.Data)
	if err != nil {
		return err
	}

	pda, bump, err := DeriveAuthority(programID)
	if err != nil {
		return err
	}

	tokenProgram, err := it.Next()
	if err != nil {
		return err
	}
	pdaAuthority, err := it.Next()
	if err != nil {
		return err
	}
	if pdaAuthority.Key != pda {
		return ErrInvalidAccountData
	}
	seeds := AuthoritySignerSeeds(bump)

	// 托管资产全额退回 initializer 的收款账户
	refund := token.NewTransferInstruction(tokenProgram.Key, tempAccount.Key, initializerReceive.Key, pda, tempState.Amount)
	if err := ctx.InvokeSigned(refund, seeds); err != nil {
		return err
	}

	closeTemp := token.NewCloseAccountInstruction(tokenProgram.Key, tempAccount.Key, initializerMain.Key, pda)
	if err := ctx.InvokeSigned(closeTemp, seeds); err != nil {
		return err
	}

	return closeRecord(initializerMain, escrowAccount)
}

// closeRecord 关闭 escrow 记录：押金 checked 加法计入 dest，记录余额与数据清零。
// 这是记录的不可逆终态。
func closeRecord(dest, record *runtime.AccountInfo) error {
	newLamports := dest.Account.Lamports + record.Account.Lamports
	if newLamports < dest.Account.Lamports {
		return ErrAmountOverflow
	}
	dest.Account.Lamports = newLamports
	record.Account.Lamports = 0
	record.Account.Data = nil
	return nil
}
