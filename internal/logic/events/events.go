package events

import (
	"escrow-program-sol/internal/types"
)

// 事件类型枚举（编码进消息前缀，下游按类型分发）
const (
	TypeEscrowInitialized uint32 = 1
	TypeEscrowExchanged   uint32 = 2
	TypeEscrowCancelled   uint32 = 3
)

// EscrowInitialized 一笔托管创建：记录各方身份与成交条件
type EscrowInitialized struct {
	Record         types.Pubkey
	Initializer    types.Pubkey
	TempAccount    types.Pubkey
	ReceiveAccount types.Pubkey
	ExpectedAmount uint64
}

// EscrowExchanged 托管成交：taker 应约，记录销毁
type EscrowExchanged struct {
	Record      types.Pubkey
	Taker       types.Pubkey
	TempAccount types.Pubkey
	Amount      uint64
}

// EscrowCancelled 托管撤回：资产退还 initializer，记录销毁
type EscrowCancelled struct {
	Record      types.Pubkey
	Initializer types.Pubkey
}

// Event 表示一条已提取的生命周期事件。
// Key 为 Kafka 分区 key（escrow 记录地址），Payload 为对应事件体（borsh 序列化）。
type Event struct {
	Type    uint32
	Key     types.Pubkey
	Payload any
}
