package cache

import (
	"testing"

	"escrow-program-sol/internal/logic/events"
	"escrow-program-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pk(seed byte) types.Pubkey {
	var p types.Pubkey
	for i := range p {
		p[i] = seed
	}
	return p
}

func TestEscrowCache_PutGetRemove(t *testing.T) {
	c := NewEscrowCache()

	e := &OpenEscrow{
		Record:         pk(1),
		Initializer:    pk(2),
		TempAccount:    pk(3),
		ReceiveAccount: pk(4),
		ExpectedAmount: 100,
		CreatedAt:      1000,
	}
	c.Put(e)

	got, ok := c.Get(pk(1))
	require.True(t, ok)
	assert.Equal(t, *e, *got)

	// Get 返回副本，修改不应影响缓存
	got.ExpectedAmount = 999
	again, _ := c.Get(pk(1))
	assert.Equal(t, uint64(100), again.ExpectedAmount)

	c.Remove(pk(1))
	_, ok = c.Get(pk(1))
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestEscrowCache_ListOrdered(t *testing.T) {
	c := NewEscrowCache()
	c.Put(&OpenEscrow{Record: pk(3), CreatedAt: 300})
	c.Put(&OpenEscrow{Record: pk(1), CreatedAt: 100})
	c.Put(&OpenEscrow{Record: pk(5), CreatedAt: 100}) // 同时间按地址字典序

	list := c.List()
	require.Len(t, list, 3)
	assert.Equal(t, pk(1), list[0].Record)
	assert.Equal(t, pk(5), list[1].Record)
	assert.Equal(t, pk(3), list[2].Record)
}

func TestEscrowCache_ApplyEvent(t *testing.T) {
	c := NewEscrowCache()

	record := pk(7)
	c.ApplyEvent(&events.Event{
		Type: events.TypeEscrowInitialized,
		Key:  record,
		Payload: events.EscrowInitialized{
			Record:         record,
			Initializer:    pk(1),
			TempAccount:    pk(2),
			ReceiveAccount: pk(3),
			ExpectedAmount: 50,
		},
	})

	got, ok := c.Get(record)
	require.True(t, ok)
	assert.Equal(t, uint64(50), got.ExpectedAmount)
	assert.NotZero(t, got.CreatedAt)

	// Exchange 事件注销对应条目
	c.ApplyEvent(&events.Event{Type: events.TypeEscrowExchanged, Key: record})
	_, ok = c.Get(record)
	assert.False(t, ok)

	// Cancel 对不存在的条目是幂等的
	c.ApplyEvent(&events.Event{Type: events.TypeEscrowCancelled, Key: record})
	assert.Equal(t, 0, c.Len())
}
