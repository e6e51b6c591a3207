package progress

import (
	"context"
	"fmt"
	"time"

	"escrow-program-sol/internal/logic/events"
	"escrow-program-sol/internal/types"

	"github.com/redis/go-redis/v9"
)

// EscrowStatusStore 管理 Redis 中的托管状态记录，供查询接口与下游判重使用
type EscrowStatusStore struct {
	rdb *redis.Client
}

// Redis key 前缀
const escrowStatusPrefix = "progress:escrow"

// 状态 TTL：open 托管随时可能被应约，保留久一些；终态只为查询兜底
const (
	openTTL   = 7 * 24 * time.Hour
	closedTTL = 24 * time.Hour
)

// NewEscrowStatusStore 创建托管状态管理器
func NewEscrowStatusStore(rdb *redis.Client) *EscrowStatusStore {
	return &EscrowStatusStore{rdb: rdb}
}

// getKey 构造 Redis key，按托管记录地址区分
func (s *EscrowStatusStore) getKey(record types.Pubkey) string {
	return fmt.Sprintf("%s:%s", escrowStatusPrefix, record)
}

// getTTL 获取状态的 TTL：终态比 open 更短
func (s *EscrowStatusStore) getTTL(status EscrowStatus) time.Duration {
	if status == EscrowOpen {
		return openTTL
	}
	return closedTTL
}

// GetStatus 获取托管状态（Unknown / Open / Exchanged / Cancelled）
func (s *EscrowStatusStore) GetStatus(ctx context.Context, record types.Pubkey) (EscrowStatus, error) {
	val, err := s.rdb.Get(ctx, s.getKey(record)).Int()
	switch {
	case err == redis.Nil:
		return EscrowUnknown, nil
	case err != nil:
		return EscrowUnknown, fmt.Errorf("redis get error: %w", err)
	case val == int(EscrowOpen):
		return EscrowOpen, nil
	case val == int(EscrowExchanged):
		return EscrowExchanged, nil
	case val == int(EscrowCancelled):
		return EscrowCancelled, nil
	default:
		return EscrowUnknown, nil // 容错处理
	}
}

// MarkStatus 通用设置托管状态
func (s *EscrowStatusStore) MarkStatus(ctx context.Context, record types.Pubkey, status EscrowStatus) error {
	return s.rdb.Set(ctx, s.getKey(record), int(status), s.getTTL(status)).Err()
}

// ApplyEvent 按生命周期事件推进托管状态
func (s *EscrowStatusStore) ApplyEvent(ctx context.Context, ev *events.Event) error {
	switch ev.Type {
	case events.TypeEscrowInitialized:
		return s.MarkStatus(ctx, ev.Key, EscrowOpen)
	case events.TypeEscrowExchanged:
		return s.MarkStatus(ctx, ev.Key, EscrowExchanged)
	case events.TypeEscrowCancelled:
		return s.MarkStatus(ctx, ev.Key, EscrowCancelled)
	default:
		return fmt.Errorf("unknown event type: %d", ev.Type)
	}
}
