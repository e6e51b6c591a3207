package events

import (
	"testing"

	"escrow-program-sol/internal/program/escrow"
	"escrow-program-sol/internal/runtime"
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

var testProgram = pk(200)

func metas(keys ...types.Pubkey) []runtime.AccountMeta {
	result := make([]runtime.AccountMeta, 0, len(keys))
	for _, key := range keys {
		result = append(result, runtime.AccountMeta{Pubkey: key})
	}
	return result
}

func TestExtractEvents_Init(t *testing.T) {
	registry := NewRegistry(testProgram)

	initializer, temp, receive, record := pk(1), pk(2), pk(3), pk(4)
	tx := &runtime.Transaction{
		Instructions: []runtime.Instruction{{
			ProgramID: testProgram,
			Accounts:  metas(initializer, temp, receive, record, pk(5), pk(6)),
			Data:      escrow.PackInitInstruction(500),
		}},
	}

	evs := registry.ExtractEvents(tx)
	require.Len(t, evs, 1)
	assert.Equal(t, TypeEscrowInitialized, evs[0].Type)
	assert.Equal(t, record, evs[0].Key)

	payload, ok := evs[0].Payload.(EscrowInitialized)
	require.True(t, ok)
	assert.Equal(t, initializer, payload.Initializer)
	assert.Equal(t, temp, payload.TempAccount)
	assert.Equal(t, receive, payload.ReceiveAccount)
	assert.Equal(t, uint64(500), payload.ExpectedAmount)
}

func TestExtractEvents_Exchange(t *testing.T) {
	registry := NewRegistry(testProgram)

	taker, temp, record := pk(1), pk(4), pk(7)
	tx := &runtime.Transaction{
		Instructions: []runtime.Instruction{{
			ProgramID: testProgram,
			Accounts:  metas(taker, pk(2), pk(3), temp, pk(5), pk(6), record, pk(8), pk(9)),
			Data:      escrow.PackExchangeInstruction(50),
		}},
	}

	evs := registry.ExtractEvents(tx)
	require.Len(t, evs, 1)
	assert.Equal(t, TypeEscrowExchanged, evs[0].Type)
	assert.Equal(t, record, evs[0].Key)

	payload, ok := evs[0].Payload.(EscrowExchanged)
	require.True(t, ok)
	assert.Equal(t, taker, payload.Taker)
	assert.Equal(t, temp, payload.TempAccount)
	assert.Equal(t, uint64(50), payload.Amount)
}

func TestExtractEvents_Cancel(t *testing.T) {
	registry := NewRegistry(testProgram)

	temp, initializer, record := pk(1), pk(2), pk(4)
	tx := &runtime.Transaction{
		Instructions: []runtime.Instruction{{
			ProgramID: testProgram,
			Accounts:  metas(temp, initializer, pk(3), record, pk(5), pk(6)),
			Data:      escrow.PackCancelInstruction(),
		}},
	}

	evs := registry.ExtractEvents(tx)
	require.Len(t, evs, 1)
	assert.Equal(t, TypeEscrowCancelled, evs[0].Type)
	assert.Equal(t, record, evs[0].Key)

	payload, ok := evs[0].Payload.(EscrowCancelled)
	require.True(t, ok)
	assert.Equal(t, initializer, payload.Initializer)
}

func TestExtractEvents_IgnoresOtherPrograms(t *testing.T) {
	registry := NewRegistry(testProgram)

	tx := &runtime.Transaction{
		Instructions: []runtime.Instruction{{
			ProgramID: pk(99), // 未注册的程序
			Accounts:  metas(pk(1), pk(2), pk(3), pk(4), pk(5), pk(6)),
			Data:      escrow.PackInitInstruction(500),
		}},
	}
	assert.Empty(t, registry.ExtractEvents(tx))
}

func TestExtractEvents_MalformedInstruction(t *testing.T) {
	registry := NewRegistry(testProgram)

	// 数据非法的指令不产生事件，也不影响其它指令
	tx := &runtime.Transaction{
		Instructions: []runtime.Instruction{
			{
				ProgramID: testProgram,
				Accounts:  metas(pk(1)),
				Data:      []byte{255},
			},
			{
				ProgramID: testProgram,
				Accounts:  metas(pk(1), pk(2), pk(3), pk(4), pk(5), pk(6)),
				Data:      escrow.PackInitInstruction(10),
			},
		},
	}

	evs := registry.ExtractEvents(tx)
	require.Len(t, evs, 1)
	assert.Equal(t, TypeEscrowInitialized, evs[0].Type)
}
