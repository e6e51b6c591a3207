package events

import (
	"escrow-program-sol/internal/pkg/logger"
	"escrow-program-sol/internal/program/escrow"
	"escrow-program-sol/internal/runtime"
	"escrow-program-sol/internal/types"
)

// escrow 指令的账户位置（与 processor 的账户顺序一致）
const (
	initRecordIndex      = 3
	exchangeRecordIndex  = 6
	cancelRecordIndex    = 3
	initTempIndex        = 1
	initReceiveIndex     = 2
	exchangeTakerIndex   = 0
	exchangeTempIndex    = 3
	cancelTempIndex      = 0
	cancelInitiatorIndex = 1
)

// registerEscrowHandlers 注册 escrow 程序的事件解析逻辑
func registerEscrowHandlers(m map[types.Pubkey]InstructionHandler, programID types.Pubkey) {
	m[programID] = handleEscrowInstruction
}

// handleEscrowInstruction 按指令 tag 构造对应的生命周期事件。
// 指令已被程序执行成功，这里只做结构提取，不重复业务校验。
func handleEscrowInstruction(ix runtime.Instruction) *Event {
	decoded, err := escrow.UnpackInstruction(ix.Data)
	if err != nil {
		logger.Warnf("[events] 无法解码已执行的 escrow 指令: %v", err)
		return nil
	}

	switch decoded.Tag {
	case escrow.TagInit:
		if len(ix.Accounts) <= initRecordIndex {
			return nil
		}
		record := ix.Accounts[initRecordIndex].Pubkey
		return &Event{
			Type: TypeEscrowInitialized,
			Key:  record,
			Payload: EscrowInitialized{
				Record:         record,
				Initializer:    ix.Accounts[0].Pubkey,
				TempAccount:    ix.Accounts[initTempIndex].Pubkey,
				ReceiveAccount: ix.Accounts[initReceiveIndex].Pubkey,
				ExpectedAmount: decoded.Amount,
			},
		}

	case escrow.TagExchange:
		if len(ix.Accounts) <= exchangeRecordIndex {
			return nil
		}
		record := ix.Accounts[exchangeRecordIndex].Pubkey
		return &Event{
			Type: TypeEscrowExchanged,
			Key:  record,
			Payload: EscrowExchanged{
				Record:      record,
				Taker:       ix.Accounts[exchangeTakerIndex].Pubkey,
				TempAccount: ix.Accounts[exchangeTempIndex].Pubkey,
				Amount:      decoded.Amount,
			},
		}

	case escrow.TagCancel:
		if len(ix.Accounts) <= cancelRecordIndex {
			return nil
		}
		record := ix.Accounts[cancelRecordIndex].Pubkey
		return &Event{
			Type: TypeEscrowCancelled,
			Key:  record,
			Payload: EscrowCancelled{
				Record:      record,
				Initializer: ix.Accounts[cancelInitiatorIndex].Pubkey,
			},
		}

	default:
		return nil
	}
}
