package config

import (
	"escrow-program-sol/internal/pkg/logger"
	"escrow-program-sol/internal/pkg/mq"
)

type LogConfig struct {
	Format   string `yaml:"format"`   // 日志格式，支持 "console" 或 "json"
	LogDir   string `yaml:"log_dir"`  // 日志目录（可为相对路径或绝对路径）
	Level    string `yaml:"level"`    // 日志级别：debug / info / warn / error
	Compress bool   `yaml:"compress"` // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// RestConfig 表示 REST 服务监听配置
type RestConfig struct {
	Host string `yaml:"host"` // 监听地址，如 0.0.0.0
	Port int    `yaml:"port"` // 监听端口
}

// KafkaProducerConfig 表示 Kafka 生产者相关配置
type KafkaProducerConfig struct {
	Brokers   string `yaml:"brokers"`    // Kafka broker 地址，多个用英文逗号分隔
	BatchSize int    `yaml:"batch_size"` // 批处理大小（单位字节）
	LingerMs  int    `yaml:"linger_ms"`  // 批处理最大延迟（毫秒）

	Topics struct {
		Escrow string `yaml:"escrow"` // 托管生命周期事件的 Kafka topic
	} `yaml:"topics"`

	Partitions struct {
		Escrow int `yaml:"escrow"` // escrow topic 的分区数
	} `yaml:"partitions"`
}

func (c *KafkaProducerConfig) ToKafkaOption() mq.KafkaProducerOption {
	return mq.KafkaProducerOption{
		Brokers:   c.Brokers,
		BatchSize: c.BatchSize,
		LingerMs:  c.LingerMs,
		Topics: []struct {
			Topic      string
			Partitions int
		}{
			{Topic: c.Topics.Escrow, Partitions: c.Partitions.Escrow},
		},
	}
}

// TimeConfig 表示各种超时配置（单位：毫秒）
type TimeConfig struct {
	EventSendTimeoutMs int `yaml:"event_send_timeout_ms"` // 单条事件发送到 Kafka 并等待 ack 的超时时间
	PublishTimeoutMs   int `yaml:"publish_timeout_ms"`    // 一批事件整体发布的最大耗时（Kafka + Redis）
}

// EscrowdConfig 是主配置结构体，用于驱动托管服务
type EscrowdConfig struct {
	LogConf           LogConfig           `yaml:"logger"`         // 日志配置
	RestConf          RestConfig          `yaml:"rest"`           // REST 服务配置
	KafkaProducerConf KafkaProducerConfig `yaml:"kafka_producer"` // Kafka 生产者配置
	TimeConf          TimeConfig          `yaml:"time_conf"`      // 时间相关配置

	RedisAddr string `yaml:"redis_addr"` // Redis 地址

	// escrow 程序部署地址（base58），运行时注册到 bank
	EscrowProgramID string `yaml:"escrow_program_id"`

	// 创世账本文件（yaml），启动时注入 bank 初始状态；为空则从空账本启动
	GenesisFile string `yaml:"genesis_file"`
}
