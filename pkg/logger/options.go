package logger

import "io"

// Option 配置选项
type Option func(*BaseLogger)

// WithName 设置 logger 名称
func WithName(name string) Option {
	return func(l *BaseLogger) {
		l.name = name
	}
}

// WithGlobalFields 添加全局字段，key-value 交替
func WithGlobalFields(keysAndValues ...any) Option {
	return func(l *BaseLogger) {
		for i := 0; i+1 < len(keysAndValues); i += 2 {
			key, ok := keysAndValues[i].(string)
			if !ok {
				continue
			}
			l.globalFields[key] = keysAndValues[i+1]
		}
	}
}

// WithHooks 添加钩子
func WithHooks(hooks ...Hook) Option {
	return func(l *BaseLogger) {
		l.hooks = append(l.hooks, hooks...)
	}
}

// WithLevel 设置日志等级
func WithLevel(level Level) Option {
	return func(l *BaseLogger) {
		l.config.Level = level
	}
}

// WithDevelopment 启用开发模式
func WithDevelopment(dev bool) Option {
	return func(l *BaseLogger) {
		l.config.Development = dev
	}
}

// WithOutput 将控制台输出替换为 w，主要用于测试与嵌入
func WithOutput(w io.Writer) Option {
	return func(l *BaseLogger) {
		l.output = w
	}
}

// WithContextExtractor 设置 context 字段提取器
func WithContextExtractor(extractor ContextFieldExtractor) Option {
	return func(l *BaseLogger) {
		if extractor != nil {
			l.contextExtractor = extractor
		}
	}
}
