package logger

import (
	"context"
	"os"
	"strings"
	"sync"
)

var (
	defaultLogger   Logger
	defaultLoggerMu sync.RWMutex
)

// InitDefault 初始化默认 logger
func InitDefault(cfg *Config, opts ...Option) error {
	l, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	SetDefault(l)
	return nil
}

// InitDefaultFromEnv 从环境变量初始化默认 logger
// 环境变量: OVERLAY_LOG_LEVEL, OVERLAY_LOG_FORMAT, OVERLAY_LOG_PATH, OVERLAY_LOG_DEVELOPMENT
func InitDefaultFromEnv() error {
	cfg := &Config{}
	if level := os.Getenv("OVERLAY_LOG_LEVEL"); level != "" {
		cfg.Level = Level(strings.ToLower(level))
	}
	if format := os.Getenv("OVERLAY_LOG_FORMAT"); format != "" {
		cfg.Format = Format(strings.ToLower(format))
	}
	if path := os.Getenv("OVERLAY_LOG_PATH"); path != "" {
		cfg.EnableFile = true
		cfg.OutputPath = path
	}
	if os.Getenv("OVERLAY_LOG_DEVELOPMENT") == "true" {
		cfg.Development = true
	}
	return InitDefault(cfg)
}

// SetDefault 设置默认 logger，nil 被忽略
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = l
}

// Default 获取默认 logger，未初始化时使用默认配置懒加载
func Default() Logger {
	defaultLoggerMu.RLock()
	l := defaultLogger
	defaultLoggerMu.RUnlock()
	if l != nil {
		return l
	}

	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	if defaultLogger == nil {
		base, err := New(nil)
		if err != nil {
			defaultLogger = NewNoop()
		} else {
			defaultLogger = base
		}
	}
	return defaultLogger
}

// --- 便捷函数 (使用默认 logger) ---

func Debug(msg string, keysAndValues ...any) { Default().Debug(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...any) { Default().Info(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...any) { Default().Warn(msg, keysAndValues...) }
func Error(msg string, keysAndValues ...any) { Default().Error(msg, keysAndValues...) }

func DebugContext(ctx context.Context, msg string, keysAndValues ...any) {
	Default().DebugContext(ctx, msg, keysAndValues...)
}

func InfoContext(ctx context.Context, msg string, keysAndValues ...any) {
	Default().InfoContext(ctx, msg, keysAndValues...)
}

func WarnContext(ctx context.Context, msg string, keysAndValues ...any) {
	Default().WarnContext(ctx, msg, keysAndValues...)
}

func ErrorContext(ctx context.Context, msg string, keysAndValues ...any) {
	Default().ErrorContext(ctx, msg, keysAndValues...)
}

func Named(name string) Logger { return Default().Named(name) }

func WithFields(keysAndValues ...any) Logger { return Default().WithFields(keysAndValues...) }

func Sync() error { return Default().Sync() }
