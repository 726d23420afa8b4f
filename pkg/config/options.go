package config

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Option 配置选项函数
type Option func(*manager)

// WithDefaults 设置默认配置值，key 使用点分路径
func WithDefaults(defaults map[string]any) Option {
	return func(m *manager) {
		for key, value := range defaults {
			m.v.SetDefault(key, value)
		}
	}
}

// WithConfigType 设置配置文件类型（yaml、json、toml 等）
func WithConfigType(configType string) Option {
	return func(m *manager) {
		m.v.SetConfigType(configType)
	}
}

// WithConfigName 设置配置文件名（不含扩展名），配合 Load 使用
func WithConfigName(name string) Option {
	return func(m *manager) {
		m.v.SetConfigName(name)
	}
}

// WithConfigPaths 添加配置文件搜索路径
func WithConfigPaths(paths ...string) Option {
	return func(m *manager) {
		for _, path := range paths {
			m.v.AddConfigPath(path)
		}
	}
}

// WithEnvPrefix 设置环境变量前缀并开启自动绑定
func WithEnvPrefix(prefix string) Option {
	return func(m *manager) {
		if prefix == "" {
			return
		}
		m.v.SetEnvPrefix(prefix)
		m.v.SetEnvKeyReplacer(envKeyReplacer)
		m.v.AutomaticEnv()
	}
}

// WithDecodeHooks 追加自定义解码钩子，先于内置钩子执行
func WithDecodeHooks(hooks ...mapstructure.DecodeHookFunc) Option {
	return func(m *manager) {
		m.hooks = append(m.hooks, hooks...)
	}
}

// WithViper 使用自定义的 Viper 实例
func WithViper(v *viper.Viper) Option {
	return func(m *manager) {
		m.v = v
	}
}
