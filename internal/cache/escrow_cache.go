package cache

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"escrow-program-sol/internal/logic/events"
	"escrow-program-sol/internal/types"
)

// OpenEscrow 是一笔在档托管的内存快照，服务查询接口直接读这里，不回扫账本
type OpenEscrow struct {
	Record         types.Pubkey
	Initializer    types.Pubkey
	TempAccount    types.Pubkey
	ReceiveAccount types.Pubkey
	ExpectedAmount uint64
	CreatedAt      int64 // Unix 秒，进入缓存的时间
}

// EscrowCache 维护当前 open 状态的托管集合。
// Exchange/Cancel 成功后对应条目被移除，与链上记录账户的生命周期一致。
type EscrowCache struct {
	mu   sync.RWMutex
	open map[types.Pubkey]*OpenEscrow
}

func NewEscrowCache() *EscrowCache {
	return &EscrowCache{
		open: make(map[types.Pubkey]*OpenEscrow),
	}
}

// Put 登记一笔新 open 的托管（同地址重复登记以最新为准）
func (c *EscrowCache) Put(e *OpenEscrow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open[e.Record] = e
}

// Remove 移除一笔托管（Exchange / Cancel 后记录销毁）
func (c *EscrowCache) Remove(record types.Pubkey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.open, record)
}

// Get 查询单笔 open 托管
func (c *EscrowCache) Get(record types.Pubkey) (*OpenEscrow, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.open[record]
	if !ok {
		return nil, false
	}
	copied := *e
	return &copied, true
}

// List 返回全部 open 托管，按创建时间升序（同时间按记录地址字典序，保证稳定输出）
func (c *EscrowCache) List() []*OpenEscrow {
	c.mu.RLock()
	result := make([]*OpenEscrow, 0, len(c.open))
	for _, e := range c.open {
		copied := *e
		result = append(result, &copied)
	}
	c.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return bytes.Compare(result[i].Record[:], result[j].Record[:]) < 0
	})
	return result
}

// Len 返回 open 托管数量
func (c *EscrowCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.open)
}

// ApplyEvent 按生命周期事件维护缓存：Init 登记，Exchange/Cancel 注销
func (c *EscrowCache) ApplyEvent(ev *events.Event) {
	switch ev.Type {
	case events.TypeEscrowInitialized:
		payload, ok := ev.Payload.(events.EscrowInitialized)
		if !ok {
			return
		}
		c.Put(&OpenEscrow{
			Record:         payload.Record,
			Initializer:    payload.Initializer,
			TempAccount:    payload.TempAccount,
			ReceiveAccount: payload.ReceiveAccount,
			ExpectedAmount: payload.ExpectedAmount,
			CreatedAt:      time.Now().Unix(),
		})
	case events.TypeEscrowExchanged, events.TypeEscrowCancelled:
		c.Remove(ev.Key)
	}
}
