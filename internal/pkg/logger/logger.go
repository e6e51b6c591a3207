package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOption 日志初始化配置
type LogOption struct {
	Format   string // 日志格式，支持 "console" 或 "json"
	LogDir   string // 日志目录（为空则只输出到 stdout）
	Level    string // 日志级别：debug / info / warn / error
	Compress bool   // 是否压缩旧日志文件
}

var (
	mu  sync.RWMutex
	log = newDefault() // 未显式 Init 时的兜底 logger（stdout console）
)

func newDefault() *zap.SugaredLogger {
	encoder := zapcore.NewConsoleEncoder(encoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)
	return zap.New(core).Sugar()
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// Init 按配置初始化全局 logger。
// LogDir 非空时输出到滚动文件（lumberjack），否则输出到 stdout。
func Init(opt LogOption) error {
	level := parseLevel(opt.Level)

	var encoder zapcore.Encoder
	if strings.EqualFold(opt.Format, "json") {
		encoder = zapcore.NewJSONEncoder(encoderConfig())
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig())
	}

	var sink zapcore.WriteSyncer
	if opt.LogDir != "" {
		if err := os.MkdirAll(opt.LogDir, 0o755); err != nil {
			return err
		}
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(opt.LogDir, "escrowd.log"),
			MaxSize:    256, // MB
			MaxBackups: 10,
			MaxAge:     14, // days
			Compress:   opt.Compress,
		})
	} else {
		sink = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, sink, level)

	mu.Lock()
	log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	mu.Unlock()
	return nil
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sync 刷新缓冲日志（进程退出前调用）
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = log.Sync()
}

func Debugf(format string, args ...any) {
	mu.RLock()
	l := log
	mu.RUnlock()
	l.Debugf(format, args...)
}

func Infof(format string, args ...any) {
	mu.RLock()
	l := log
	mu.RUnlock()
	l.Infof(format, args...)
}

func Warnf(format string, args ...any) {
	mu.RLock()
	l := log
	mu.RUnlock()
	l.Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	mu.RLock()
	l := log
	mu.RUnlock()
	l.Errorf(format, args...)
}
