package progress

// EscrowStatus 表示一笔托管在其生命周期中的状态
type EscrowStatus int

const (
	EscrowUnknown   EscrowStatus = 0 // Redis 不存在（从未见过或已过期）
	EscrowOpen      EscrowStatus = 1 // Init 成功，等待 taker
	EscrowExchanged EscrowStatus = 2 // Exchange 成功，记录已销毁
	EscrowCancelled EscrowStatus = 3 // Cancel 成功，记录已销毁
)

func (s EscrowStatus) String() string {
	switch s {
	case EscrowOpen:
		return "open"
	case EscrowExchanged:
		return "exchanged"
	case EscrowCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
