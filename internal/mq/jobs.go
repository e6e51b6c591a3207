package mq

import (
	"escrow-program-sol/internal/logic/events"
	"escrow-program-sol/internal/pkg/logger"
	pkgutils "escrow-program-sol/internal/pkg/utils"
	"escrow-program-sol/internal/utils"
)

// BuildEscrowJobs 将生命周期事件编码为 Kafka 消息。
// 分区按 escrow 记录地址 hash：同一托管的 Init/Exchange/Cancel 落在同一分区，下游顺序消费。
func BuildEscrowJobs(evs []*events.Event, topic string, partitions int) []*KafkaJob {
	if len(evs) == 0 {
		return nil
	}

	jobs := make([]*KafkaJob, 0, len(evs))
	for _, ev := range evs {
		value, err := utils.EncodeEvent(ev.Type, ev.Payload)
		if err != nil {
			// 事件体都是固定大小结构，编码失败说明代码有 bug，跳过并告警
			logger.Errorf("[mq] encode event type=%d key=%s failed: %v", ev.Type, ev.Key, err)
			continue
		}
		jobs = append(jobs, &KafkaJob{
			Topic:     topic,
			Partition: int32(pkgutils.PartitionHashBytes(ev.Key[:], uint32(partitions))),
			Key:       ev.Key[:],
			Value:     value,
		})
	}
	return jobs
}
