// pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/overlay/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 确保 BaseLogger 实现了 Logger 接口
var _ Logger = (*BaseLogger)(nil)

// BaseLogger 基于 zap 的日志记录器实现
type BaseLogger struct {
	zl               *zap.Logger
	config           *Config
	name             string
	globalFields     map[string]any
	hooks            []Hook
	output           io.Writer
	contextExtractor ContextFieldExtractor
}

// New 创建新的 BaseLogger，cfg 可以只包含部分字段
func New(cfg *Config, opts ...Option) (*BaseLogger, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge logger config")
	}

	l := &BaseLogger{
		config:           merged,
		globalFields:     make(map[string]any, len(merged.GlobalFields)),
		contextExtractor: DefaultContextExtractor,
	}
	for k, v := range merged.GlobalFields {
		l.globalFields[k] = v
	}

	for _, opt := range opts {
		opt(l)
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	if len(l.config.TruncateFields) > 0 {
		l.hooks = append(l.hooks, TruncateHook(l.config.TruncateLength, l.config.TruncateFields...))
	}

	zl, err := l.build()
	if err != nil {
		return nil, err
	}
	l.zl = zl
	return l, nil
}

// build 构建 zap logger
func (l *BaseLogger) build() (*zap.Logger, error) {
	encoderConfig := l.buildEncoderConfig()

	var encoder zapcore.Encoder
	if l.config.Format == ConsoleFormat {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	writers := make([]zapcore.WriteSyncer, 0, 2)
	switch {
	case l.output != nil:
		// 显式指定的输出替代控制台
		writers = append(writers, zapcore.AddSync(l.output))
	case config.Deref(l.config.EnableConsole, false):
		writers = append(writers, zapcore.Lock(os.Stdout))
	}
	if l.config.EnableFile {
		fileWriter, err := NewRotationWriter(&l.config.Rotation, l.config.OutputPath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create rotation writer")
		}
		writers = append(writers, zapcore.AddSync(fileWriter))
	}

	var core zapcore.Core = zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(writers...), parseLevel(l.config.Level))
	if len(l.hooks) > 0 {
		core = NewHookedCore(core, l.hooks...)
	}
	if l.config.EnableSampling {
		core = zapcore.NewSamplerWithOptions(core, 1e9, l.config.SamplingInitial, l.config.SamplingThereafter)
	}

	options := []zap.Option{
		zap.AddCaller(),
		zap.AddCallerSkip(1),
	}
	if config.Deref(l.config.EnableStacktrace, false) {
		options = append(options, zap.AddStacktrace(parseLevel(l.config.StacktraceLevel)))
	}
	if l.config.Development {
		options = append(options, zap.Development())
	}

	zl := zap.New(core, options...)
	if len(l.globalFields) > 0 {
		fields := make([]zap.Field, 0, len(l.globalFields))
		for k, v := range l.globalFields {
			fields = append(fields, zap.Any(k, v))
		}
		zl = zl.With(fields...)
	}
	if l.name != "" {
		zl = zl.Named(l.name)
	}
	return zl, nil
}

// buildEncoderConfig 构建 encoder 配置
func (l *BaseLogger) buildEncoderConfig() zapcore.EncoderConfig {
	ec := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
	}
	if l.config.TimeFormat != "" {
		ec.EncodeTime = zapcore.TimeEncoderOfLayout(l.config.TimeFormat)
	}
	if l.config.Development && l.config.Format == ConsoleFormat {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return ec
}

// parseLevel 解析日志等级，未知值按 info 处理
func parseLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case PanicLevel:
		return zapcore.PanicLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Zap 返回底层 zap.Logger，供需要 zap 原生接口的第三方库使用
func (l *BaseLogger) Zap() *zap.Logger {
	return l.zl
}

// Debug 记录 debug 级别日志
func (l *BaseLogger) Debug(msg string, keysAndValues ...any) {
	l.zl.Debug(msg, toZapFields(keysAndValues)...)
}

// Info 记录 info 级别日志
func (l *BaseLogger) Info(msg string, keysAndValues ...any) {
	l.zl.Info(msg, toZapFields(keysAndValues)...)
}

// Warn 记录 warn 级别日志
func (l *BaseLogger) Warn(msg string, keysAndValues ...any) {
	l.zl.Warn(msg, toZapFields(keysAndValues)...)
}

// Error 记录 error 级别日志
func (l *BaseLogger) Error(msg string, keysAndValues ...any) {
	l.zl.Error(msg, toZapFields(keysAndValues)...)
}

// DebugContext 记录 debug 级别日志，并从 context 中提取字段
func (l *BaseLogger) DebugContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.zl.Debug(msg, l.contextFields(ctx, keysAndValues)...)
}

// InfoContext 记录 info 级别日志，并从 context 中提取字段
func (l *BaseLogger) InfoContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.zl.Info(msg, l.contextFields(ctx, keysAndValues)...)
}

// WarnContext 记录 warn 级别日志，并从 context 中提取字段
func (l *BaseLogger) WarnContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.zl.Warn(msg, l.contextFields(ctx, keysAndValues)...)
}

// ErrorContext 记录 error 级别日志，并从 context 中提取字段
func (l *BaseLogger) ErrorContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.zl.Error(msg, l.contextFields(ctx, keysAndValues)...)
}

func (l *BaseLogger) contextFields(ctx context.Context, keysAndValues []any) []zap.Field {
	return append(l.contextExtractor(ctx), toZapFields(keysAndValues)...)
}

// Named 创建具名 logger，名称以 "." 连接
func (l *BaseLogger) Named(name string) Logger {
	child := l.clone()
	child.zl = l.zl.Named(name)
	if l.name != "" {
		child.name = l.name + "." + name
	} else {
		child.name = name
	}
	return child
}

// WithFields 添加字段
func (l *BaseLogger) WithFields(keysAndValues ...any) Logger {
	fields := toZapFields(keysAndValues)
	if len(fields) == 0 {
		return l
	}
	child := l.clone()
	child.zl = l.zl.With(fields...)
	return child
}

func (l *BaseLogger) clone() *BaseLogger {
	c := *l
	return &c
}

// Sync 同步日志
func (l *BaseLogger) Sync() error {
	return l.zl.Sync()
}

// toZapFields 将 key-value 对转换为 zap.Field。
// 参数中可以混用 zap.Field 与 key-value 对，奇数个时最后一个值以 "!BADKEY" 记录。
func toZapFields(keysAndValues []any) []zap.Field {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(keysAndValues))
	for i := 0; i < len(keysAndValues); {
		if f, ok := keysAndValues[i].(zap.Field); ok {
			fields = append(fields, f)
			i++
			continue
		}
		if i+1 >= len(keysAndValues) {
			fields = append(fields, zap.Any("!BADKEY", keysAndValues[i]))
			break
		}
		key, ok := keysAndValues[i].(string)
		if !ok {
			fields = append(fields, zap.Any("!BADKEY", keysAndValues[i]))
			i++
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
		i += 2
	}
	return fields
}
