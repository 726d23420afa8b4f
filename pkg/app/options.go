package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/overlay/pkg/logger"
)

// Options 应用程序配置选项
type Options struct {
	// 节点实例 ID，默认随机 UUID
	ID          string
	Name        string
	Version     string
	StopTimeout time.Duration
	Logger      logger.Logger

	// 具名日志配置，Run 时创建
	NamedLoggers map[string]*logger.Config
	// 创建具名日志时附加的选项，如会话字段提取
	LoggerOptions []logger.Option
}

// Option 定义配置函数
type Option func(*Options)

// DefaultOptions 返回默认配置
func DefaultOptions() Options {
	return Options{
		ID:          uuid.NewString(),
		Name:        AppName,
		Version:     Version,
		StopTimeout: 10 * time.Second,
		Logger:      logger.Default(),
	}
}

// WithNamedLoggers 设置具名日志配置
func WithNamedLoggers(loggers map[string]*logger.Config) Option {
	return func(o *Options) { o.NamedLoggers = loggers }
}

// WithLoggerOptions 设置具名日志共用的选项
func WithLoggerOptions(opts ...logger.Option) Option {
	return func(o *Options) { o.LoggerOptions = append(o.LoggerOptions, opts...) }
}

func WithLogger(l logger.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

func WithID(id string) Option {
	return func(o *Options) { o.ID = id }
}

func WithName(name string) Option {
	return func(o *Options) { o.Name = name }
}

func WithVersion(v string) Option {
	return func(o *Options) { o.Version = v }
}

// WithStopTimeout 设置等待服务停止的最长时间
func WithStopTimeout(t time.Duration) Option {
	return func(o *Options) { o.StopTimeout = t }
}
