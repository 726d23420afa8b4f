package sentry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lk2023060901/overlay/pkg/config"
)

// Config Sentry 配置
type Config struct {
	// 未启用时客户端的上报方法均为空操作
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	DSN         string `json:"dsn" yaml:"dsn" mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment string `json:"environment" yaml:"environment" mapstructure:"environment"` // dev/test/prod
	Release     string `json:"release" yaml:"release" mapstructure:"release"`
	ServerName  string `json:"server_name" yaml:"server_name" mapstructure:"server_name"`

	// 错误采样率 (0.0-1.0)
	SampleRate float64 `json:"sample_rate" yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`

	AttachStacktrace *bool `json:"attach_stacktrace" yaml:"attach_stacktrace" mapstructure:"attach_stacktrace"`
	MaxBreadcrumbs   int   `json:"max_breadcrumbs" yaml:"max_breadcrumbs" mapstructure:"max_breadcrumbs" validate:"gte=0"`

	// 关闭时等待事件发送完成的时间
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	Debug bool `json:"debug" yaml:"debug" mapstructure:"debug"`

	// 全局标签
	Tags map[string]string `json:"tags" yaml:"tags" mapstructure:"tags"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Environment:      "production",
		SampleRate:       1.0,
		AttachStacktrace: config.Ptr(true),
		MaxBreadcrumbs:   100,
		ShutdownTimeout:  2 * time.Second,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if err := config.Validate(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// toClientOptions 转换为 Sentry SDK 的 ClientOptions
func (c *Config) toClientOptions() sentry.ClientOptions {
	return sentry.ClientOptions{
		Dsn:              c.DSN,
		Environment:      c.Environment,
		Release:          c.Release,
		ServerName:       c.ServerName,
		SampleRate:       c.SampleRate,
		AttachStacktrace: config.Deref(c.AttachStacktrace, false),
		MaxBreadcrumbs:   c.MaxBreadcrumbs,
		Debug:            c.Debug,
	}
}
