package mq

import (
	"encoding/binary"
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

func TestBuildEscrowJobs(t *testing.T) {
	record := pk(1)
	evs := []*events.Event{
		{
			Type: events.TypeEscrowInitialized,
			Key:  record,
			Payload: events.EscrowInitialized{
				Record:         record,
				Initializer:    pk(2),
				TempAccount:    pk(3),
				ReceiveAccount: pk(4),
				ExpectedAmount: 100,
			},
		},
		{
			Type:    events.TypeEscrowCancelled,
			Key:     record,
			Payload: events.EscrowCancelled{Record: record, Initializer: pk(2)},
		},
	}

	jobs := BuildEscrowJobs(evs, "escrow_lifecycle_event", 4)
	require.Len(t, jobs, 2)

	for i, job := range jobs {
		assert.Equal(t, "escrow_lifecycle_event", job.Topic)
		assert.Equal(t, record[:], job.Key)
		assert.Equal(t, evs[i].Type, binary.LittleEndian.Uint32(job.Value[:4]))
	}

	// 同一托管的所有事件必须落在同一分区
	assert.Equal(t, jobs[0].Partition, jobs[1].Partition)
	assert.Less(t, jobs[0].Partition, int32(4))

	assert.Nil(t, BuildEscrowJobs(nil, "t", 4))
}
