package server

import (
	"context"
	"time"

	"escrow-program-sol/internal/logic/events"
	"escrow-program-sol/internal/mq"
	"escrow-program-sol/internal/pkg/logger"
	"escrow-program-sol/internal/svc"
)

const (
	defaultEventSendTimeoutMs = 5000
	defaultPublishTimeoutMs   = 10000
)

// EventPublisher 消费交易产生的事件批，发布到 Kafka 并更新 Redis 托管状态。
// 发布失败只告警不重试：Kafka producer 自身带重试，状态查询可从缓存兜底。
type EventPublisher struct {
	sc     *svc.ServiceContext
	stopCh chan struct{}
	doneCh chan struct{}
}

func NewEventPublisher(sc *svc.ServiceContext) *EventPublisher {
	return &EventPublisher{
		sc:     sc,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start 启动后台发布循环（立即返回，与 ServiceGroup 的启动方式配合）
func (p *EventPublisher) Start() {
	logger.Infof("[publisher] 事件发布服务启动")
	go p.run()
}

func (p *EventPublisher) run() {
	defer close(p.doneCh)

	for {
		select {
		case evs := <-p.sc.EventCh:
			p.publish(evs)
		case <-p.stopCh:
			// 退出前清空通道中剩余的事件批
			for {
				select {
				case evs := <-p.sc.EventCh:
					p.publish(evs)
				default:
					logger.Infof("[publisher] 事件发布服务退出")
					return
				}
			}
		}
	}
}

func (p *EventPublisher) Stop() {
	close(p.stopCh)
	<-p.doneCh
}

func (p *EventPublisher) publish(evs []*events.Event) {
	publishTimeout := time.Duration(p.sc.Config.TimeConf.PublishTimeoutMs) * time.Millisecond
	if publishTimeout <= 0 {
		publishTimeout = defaultPublishTimeoutMs * time.Millisecond
	}
	sendTimeout := time.Duration(p.sc.Config.TimeConf.EventSendTimeoutMs) * time.Millisecond
	if sendTimeout <= 0 {
		sendTimeout = defaultEventSendTimeoutMs * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	// 1. 发布到 Kafka
	kafkaConf := &p.sc.Config.KafkaProducerConf
	jobs := mq.BuildEscrowJobs(evs, kafkaConf.Topics.Escrow, kafkaConf.Partitions.Escrow)
	if len(jobs) > 0 {
		ok, failed := mq.SendKafkaJobs(ctx, p.sc.Producer, jobs, sendTimeout)
		if len(failed) > 0 {
			logger.Errorf("[publisher] Kafka 发送部分失败: ok=%d failed=%d firstErr=%v",
				len(ok), len(failed), failed[0].Err)
		}
	}

	// 2. 更新 Redis 托管状态
	for _, ev := range evs {
		if err := p.sc.StatusStore.ApplyEvent(ctx, ev); err != nil {
			logger.Errorf("[publisher] Redis 状态更新失败 type=%d record=%s: %v", ev.Type, ev.Key, err)
		}
	}
}
