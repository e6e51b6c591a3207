package svc

import (
	"fmt"

	"escrow-program-sol/internal/cache"
	"escrow-program-sol/internal/config"
	"escrow-program-sol/internal/consts"
	"escrow-program-sol/internal/genesis"
	"escrow-program-sol/internal/logic/events"
	"escrow-program-sol/internal/logic/progress"
	"escrow-program-sol/internal/pkg/logger"
	"escrow-program-sol/internal/pkg/mq"
	"escrow-program-sol/internal/program/escrow"
	"escrow-program-sol/internal/program/system"
	"escrow-program-sol/internal/program/token"
	"escrow-program-sol/internal/runtime"
	"escrow-program-sol/internal/types"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/redis/go-redis/v9"
)

// ServiceContext 包含 escrowd 服务资源
type ServiceContext struct {
	Config        config.EscrowdConfig
	EscrowProgram types.Pubkey

	Bank        *runtime.Bank
	Registry    *events.Registry
	EscrowCache *cache.EscrowCache
	StatusStore *progress.EscrowStatusStore
	Producer    *kafka.Producer

	// 提交成功的交易产生的事件批，由 publisher 异步消费
	EventCh chan []*events.Event

	rdb *redis.Client
}

// NewServiceContext 创建一个新的 escrowd 服务上下文
func NewServiceContext(c config.EscrowdConfig) (*ServiceContext, error) {
	// 1. 解析 escrow 程序地址
	programID, err := types.TryPubkeyFromBase58(c.EscrowProgramID)
	if err != nil {
		return nil, fmt.Errorf("escrow_program_id 非法: %w", err)
	}

	// 2. 构建 bank 并注册程序。System 程序让客户端能在链上自行
	// 创建/注资记录账户（Init 的前置步骤），不依赖 genesis 预置
	bank := runtime.NewBank()
	bank.RegisterProgram(consts.SystemProgram, system.NewProgram())
	bank.RegisterProgram(consts.TokenProgram, token.NewEngine())
	bank.RegisterProgram(programID, escrow.NewProcessor())

	// 3. 注入创世账本
	if c.GenesisFile != "" {
		g, err := genesis.Load(c.GenesisFile)
		if err != nil {
			return nil, err
		}
		if err := g.Apply(bank); err != nil {
			return nil, err
		}
		logger.Infof("[svc] 创世账本已加载: accounts=%d token_accounts=%d",
			len(g.Accounts), len(g.TokenAccounts))
	}

	// 4. 初始化 Kafka 生产者
	producer, err := mq.NewKafkaProducer(c.KafkaProducerConf.ToKafkaOption())
	if err != nil {
		logger.Errorf("[svc] Kafka producer 初始化失败: %v", err)
		return nil, err
	}

	// 5. 初始化 Redis 客户端（托管状态存储）
	rdb := redis.NewClient(&redis.Options{
		Addr: c.RedisAddr, // eg: "127.0.0.1:6379"
	})

	// 6. 构造上下文
	ctx := &ServiceContext{
		Config:        c,
		EscrowProgram: programID,
		Bank:          bank,
		Registry:      events.NewRegistry(programID),
		EscrowCache:   cache.NewEscrowCache(),
		StatusStore:   progress.NewEscrowStatusStore(rdb),
		Producer:      producer,
		EventCh:       make(chan []*events.Event, 256),
		rdb:           rdb,
	}

	logger.Infof("[svc] escrowd 服务上下文初始化完成, program=%s", programID)
	return ctx, nil
}

// Close 关闭服务上下文中的资源
func (ctx *ServiceContext) Close() {
	if ctx.Producer != nil {
		ctx.Producer.Close()
	}
	if ctx.rdb != nil {
		_ = ctx.rdb.Close()
	}
}
