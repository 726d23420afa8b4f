package logger

import (
	"context"

	"go.uber.org/zap"
)

// ContextFieldExtractor 从 context 提取字段的函数类型
type ContextFieldExtractor func(ctx context.Context) []zap.Field

// DefaultContextExtractor 默认的 context 提取器（不提取任何字段）
func DefaultContextExtractor(context.Context) []zap.Field {
	return nil
}

type ctxKey int

const (
	sessionIDKey ctxKey = iota
	remoteAddrKey
)

// ContextWithSession 在 context 中记录会话信息，供 SessionContextExtractor 提取
func ContextWithSession(ctx context.Context, sessionID, remoteAddr string) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return context.WithValue(ctx, remoteAddrKey, remoteAddr)
}

// SessionContextExtractor 提取 session_id 与 remote_addr 字段
func SessionContextExtractor(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	var fields []zap.Field
	if id, ok := ctx.Value(sessionIDKey).(string); ok && id != "" {
		fields = append(fields, zap.String("session_id", id))
	}
	if addr, ok := ctx.Value(remoteAddrKey).(string); ok && addr != "" {
		fields = append(fields, zap.String("remote_addr", addr))
	}
	return fields
}

// ChainExtractors 依次执行多个提取器并合并结果
func ChainExtractors(extractors ...ContextFieldExtractor) ContextFieldExtractor {
	return func(ctx context.Context) []zap.Field {
		var fields []zap.Field
		for _, e := range extractors {
			fields = append(fields, e(ctx)...)
		}
		return fields
	}
}
