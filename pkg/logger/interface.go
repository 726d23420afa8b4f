// pkg/logger/interface.go
package logger

import "context"

// Logger 日志接口
// 其他 pkg 模块依赖此接口，不直接依赖 zap
type Logger interface {
	// 基础日志方法，keysAndValues 为 key-value 交替或 zap.Field
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)

	// Context 版本，额外附带从 ctx 中提取的字段
	DebugContext(ctx context.Context, msg string, keysAndValues ...any)
	InfoContext(ctx context.Context, msg string, keysAndValues ...any)
	WarnContext(ctx context.Context, msg string, keysAndValues ...any)
	ErrorContext(ctx context.Context, msg string, keysAndValues ...any)

	// 派生方法
	Named(name string) Logger
	WithFields(keysAndValues ...any) Logger

	// 同步
	Sync() error
}
