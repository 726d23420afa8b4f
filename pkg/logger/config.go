package logger

import (
	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/overlay/pkg/config"
)

// Level 日志等级
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
	PanicLevel Level = "panic"
	FatalLevel Level = "fatal"
)

// Format 日志格式
type Format string

const (
	JSONFormat    Format = "json"
	ConsoleFormat Format = "console"
)

// RotationType 轮换类型
type RotationType string

const (
	RotationBySize RotationType = "size"
	RotationByTime RotationType = "time"
)

// Config 日志配置
type Config struct {
	Level  Level  `mapstructure:"level" json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error panic fatal"`
	Format Format `mapstructure:"format" json:"format" yaml:"format" validate:"omitempty,oneof=json console"`

	// 输出
	EnableConsole *bool  `mapstructure:"enable_console" json:"enable_console" yaml:"enable_console"`
	EnableFile    bool   `mapstructure:"enable_file" json:"enable_file" yaml:"enable_file"`
	OutputPath    string `mapstructure:"output_path" json:"output_path" yaml:"output_path"`

	// 时间格式 (默认: 2006-01-02 15:04:05.000)
	TimeFormat string `mapstructure:"time_format" json:"time_format" yaml:"time_format"`

	Rotation RotationConfig `mapstructure:"rotation" json:"rotation" yaml:"rotation"`

	// 堆栈跟踪
	EnableStacktrace *bool `mapstructure:"enable_stacktrace" json:"enable_stacktrace" yaml:"enable_stacktrace"`
	StacktraceLevel  Level `mapstructure:"stacktrace_level" json:"stacktrace_level" yaml:"stacktrace_level"`

	// 采样：每秒前 SamplingInitial 条全部记录，之后每 SamplingThereafter 条记录 1 条。
	// 逐帧日志在高流量下必须开启。
	EnableSampling     bool `mapstructure:"enable_sampling" json:"enable_sampling" yaml:"enable_sampling"`
	SamplingInitial    int  `mapstructure:"sampling_initial" json:"sampling_initial" yaml:"sampling_initial" validate:"gte=0"`
	SamplingThereafter int  `mapstructure:"sampling_thereafter" json:"sampling_thereafter" yaml:"sampling_thereafter" validate:"gte=0"`

	// 开发模式 (彩色输出)
	Development bool `mapstructure:"development" json:"development" yaml:"development"`

	// 全局字段
	GlobalFields map[string]any `mapstructure:"global_fields" json:"global_fields" yaml:"global_fields"`

	// 需要截断的字段名 (如 payload)，超过 TruncateLength 的字符串值会被截断
	TruncateFields []string `mapstructure:"truncate_fields" json:"truncate_fields" yaml:"truncate_fields"`
	TruncateLength int      `mapstructure:"truncate_length" json:"truncate_length" yaml:"truncate_length" validate:"gte=0"`
}

// RotationConfig 轮换配置
type RotationConfig struct {
	Type RotationType `mapstructure:"type" json:"type" yaml:"type" validate:"omitempty,oneof=size time"`

	// 按大小轮换 (lumberjack)
	MaxSize    int   `mapstructure:"max_size" json:"max_size" yaml:"max_size"`          // 单文件最大大小 (MB)
	MaxBackups int   `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"` // 保留的旧文件数量
	MaxAge     int   `mapstructure:"max_age" json:"max_age" yaml:"max_age"`             // 保留天数
	Compress   *bool `mapstructure:"compress" json:"compress" yaml:"compress"`          // 默认 true

	// 按时间轮换 (file-rotatelogs)
	RotationTime    string `mapstructure:"rotation_time" json:"rotation_time" yaml:"rotation_time"`          // 轮换间隔: 1h, 24h
	MaxAgeTime      string `mapstructure:"max_age_time" json:"max_age_time" yaml:"max_age_time"`             // 保留时长: 168h
	RotationPattern string `mapstructure:"rotation_pattern" json:"rotation_pattern" yaml:"rotation_pattern"` // 文件名时间格式: .%Y%m%d%H
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Level:         InfoLevel,
		Format:        ConsoleFormat,
		EnableConsole: config.Ptr(true),
		TimeFormat:    "2006-01-02 15:04:05.000",
		Rotation: RotationConfig{
			Type:            RotationBySize,
			MaxSize:         100,
			MaxBackups:      5,
			MaxAge:          7,
			Compress:        config.Ptr(true),
			RotationTime:    "24h",
			MaxAgeTime:      "168h",
			RotationPattern: ".%Y%m%d",
		},
		EnableStacktrace:   config.Ptr(true),
		StacktraceLevel:    ErrorLevel,
		SamplingInitial:    100,
		SamplingThereafter: 100,
		GlobalFields:       make(map[string]any),
		TruncateLength:     256,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if err := config.Validate(c); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if c.EnableFile && c.OutputPath == "" {
		return ErrInvalidOutputPath
	}
	if !config.Deref(c.EnableConsole, false) && !c.EnableFile {
		return ErrNoOutputEnabled
	}
	return nil
}
