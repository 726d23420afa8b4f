package logger

import (
	"go.uber.org/zap/zapcore"
)

// Hook 日志钩子接口
type Hook interface {
	// OnWrite 日志写入前回调，可以就地修改 fields。
	// 返回 false 则跳过该日志。
	OnWrite(entry zapcore.Entry, fields []zapcore.Field) bool
}

// HookFunc 函数式 Hook
type HookFunc func(entry zapcore.Entry, fields []zapcore.Field) bool

func (f HookFunc) OnWrite(entry zapcore.Entry, fields []zapcore.Field) bool {
	return f(entry, fields)
}

// HookedCore 带钩子的 Core
type HookedCore struct {
	zapcore.Core
	hooks []Hook
}

// NewHookedCore 创建带钩子的 Core
func NewHookedCore(core zapcore.Core, hooks ...Hook) zapcore.Core {
	return &HookedCore{
		Core:  core,
		hooks: hooks,
	}
}

// Check 检查日志等级
func (h *HookedCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if h.Enabled(entry.Level) {
		return ce.AddCore(entry, h)
	}
	return ce
}

// Write 依次执行钩子后写入
func (h *HookedCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	for _, hook := range h.hooks {
		if !hook.OnWrite(entry, fields) {
			return nil
		}
	}
	return h.Core.Write(entry, fields)
}

// With 添加字段
func (h *HookedCore) With(fields []zapcore.Field) zapcore.Core {
	return &HookedCore{
		Core:  h.Core.With(fields),
		hooks: h.hooks,
	}
}

// TruncateHook 截断指定字段的长字符串值，如逐帧日志中的 payload 十六进制
func TruncateHook(maxLen int, keys ...string) Hook {
	keySet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keySet[k] = struct{}{}
	}

	return HookFunc(func(_ zapcore.Entry, fields []zapcore.Field) bool {
		if maxLen <= 0 {
			return true
		}
		for i := range fields {
			if _, ok := keySet[fields[i].Key]; !ok {
				continue
			}
			if fields[i].Type == zapcore.StringType && len(fields[i].String) > maxLen {
				fields[i].String = fields[i].String[:maxLen] + "...(truncated)"
			}
		}
		return true
	})
}
