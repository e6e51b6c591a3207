package events

import (
	"runtime/debug"

	"escrow-program-sol/internal/pkg/logger"
	"escrow-program-sol/internal/runtime"
	"escrow-program-sol/internal/types"
)

// InstructionHandler 将一条已成功执行的指令解析为生命周期事件（无事件时返回 nil）
type InstructionHandler func(ix runtime.Instruction) *Event

// Registry 是 ProgramID → 事件解析 handler 的路由表。
// escrowd 只注册 escrow 程序；结构保持开放，后续程序可按同样方式挂载。
type Registry struct {
	handlers map[types.Pubkey]InstructionHandler
}

func NewRegistry(escrowProgram types.Pubkey) *Registry {
	r := &Registry{handlers: make(map[types.Pubkey]InstructionHandler)}
	registerEscrowHandlers(r.handlers, escrowProgram)
	return r
}

// ExtractEvents 扫描一笔已执行成功的交易，提取全部生命周期事件。
// 只应在 attempt 提交成功后调用：失败的 attempt 没有任何可见效果，也就没有事件。
func (r *Registry) ExtractEvents(tx *runtime.Transaction) (result []*Event) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorf("[events] panic extracting tx=%s: %+v\nstack: %s", tx.Signature, rec, debug.Stack())
			result = nil
		}
	}()

	for _, ix := range tx.Instructions {
		handler, ok := r.handlers[ix.ProgramID]
		if !ok {
			continue
		}
		if event := handler(ix); event != nil {
			result = append(result, event)
		}
	}
	return result
}
