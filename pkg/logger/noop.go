// pkg/logger/noop.go
package logger

import "context"

var _ Logger = NoopLogger{}

// NoopLogger 丢弃所有日志，作为各模块未注入 Logger 时的默认值
type NoopLogger struct{}

// NewNoop 创建空日志记录器
func NewNoop() Logger {
	return NoopLogger{}
}

func (NoopLogger) Debug(string, ...any) {}
func (NoopLogger) Info(string, ...any) {}
func (NoopLogger) Warn(string, ...any) {}
func (NoopLogger) Error(string, ...any) {}
func (NoopLogger) DebugContext(context.Context, string, ...any) {}
func (NoopLogger) InfoContext(context.Context, string, ...any) {}
func (NoopLogger) WarnContext(context.Context, string, ...any) {}
func (NoopLogger) ErrorContext(context.Context, string, ...any) {}
func (l NoopLogger) Named(string) Logger { return l }
func (l NoopLogger) WithFields(...any) Logger { return l }
func (NoopLogger) Sync() error { return nil }
