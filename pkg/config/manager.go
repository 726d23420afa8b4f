// pkg/config/manager.go
// 基于 viper 的配置管理：文件 + 环境变量 + 默认值
package config

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// Manager 配置管理器接口
type Manager interface {
	// LoadFile 加载指定配置文件
	LoadFile(path string) error
	// Load 按 WithConfigName/WithConfigPaths 搜索并加载配置文件
	Load() error
	// BindEnv 绑定环境变量，prefix 为 "OVERLAY" 时 OVERLAY_FRAMER_MAX_BODY_BYTES 对应 framer.max_body_bytes
	BindEnv(prefix string)
	// SetDefault 设置默认值
	SetDefault(key string, value any)
	// Unmarshal 解析整个配置到结构体
	Unmarshal(v any) error
	// UnmarshalKey 解析指定路径的配置，如 "framer" 或 "server.listen"
	UnmarshalKey(key string, v any) error
	// Get 获取配置值
	Get(key string) any
	// GetString 获取字符串配置
	GetString(key string) string
	// GetInt 获取整数配置
	GetInt(key string) int
	// GetBool 获取布尔配置
	GetBool(key string) bool
	// IsSet 检查配置项是否存在
	IsSet(key string) bool
	// Watch 监听配置文件变化
	Watch(callback func()) error
	// AllSettings 获取所有配置
	AllSettings() map[string]any
}

// manager 配置管理器实现
type manager struct {
	v         *viper.Viper
	mu        sync.RWMutex
	hooks     []mapstructure.DecodeHookFunc
	callbacks []func()
	watching  bool
}

// NewManager 创建配置管理器
func NewManager(opts ...Option) Manager {
	m := &manager{
		v: viper.New(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// LoadFile 加载配置文件（支持 YAML、JSON、TOML 等）
func (m *manager) LoadFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.v.SetConfigFile(path)
	if err := m.v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	return nil
}

// Load 在搜索路径中查找配置文件
func (m *manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return errors.Mark(errors.Wrap(err, "failed to find config file"), ErrConfigFileNotFound)
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

// BindEnv 绑定环境变量
func (m *manager) BindEnv(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prefix != "" {
		m.v.SetEnvPrefix(prefix)
	}
	m.v.SetEnvKeyReplacer(envKeyReplacer)
	m.v.AutomaticEnv()
}

// SetDefault 设置默认值
func (m *manager) SetDefault(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.v.SetDefault(key, value)
}

// Unmarshal 解析整个配置到结构体
func (m *manager) Unmarshal(v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.Unmarshal(v, m.decodeHook()); err != nil {
		return errors.Wrap(err, "failed to unmarshal config")
	}
	return nil
}

// UnmarshalKey 解析指定路径的配置
func (m *manager) UnmarshalKey(key string, v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.UnmarshalKey(key, v, m.decodeHook()); err != nil {
		return errors.Wrapf(err, "failed to unmarshal key %s", key)
	}
	return nil
}

// decodeHook 组合解码钩子：时长字符串、逗号分隔切片、实现 TextUnmarshaler 的类型（如流量分类名）
func (m *manager) decodeHook() viper.DecoderConfigOption {
	hooks := make([]mapstructure.DecodeHookFunc, 0, len(m.hooks)+3)
	hooks = append(hooks, m.hooks...)
	hooks = append(hooks,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(hooks...))
}

// Get 获取配置值
func (m *manager) Get(key string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.Get(key)
}

// GetString 获取字符串配置
func (m *manager) GetString(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetString(key)
}

// GetInt 获取整数配置
func (m *manager) GetInt(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetInt(key)
}

// GetBool 获取布尔配置
func (m *manager) GetBool(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetBool(key)
}

// IsSet 检查配置项是否存在
func (m *manager) IsSet(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.IsSet(key)
}

// Watch 监听配置文件变化，回调在 viper 的监听 goroutine 中执行
func (m *manager) Watch(callback func()) error {
	if callback == nil {
		return errors.New("config: nil watch callback")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
	if m.watching {
		return nil
	}
	m.watching = true

	m.v.OnConfigChange(func(fsnotify.Event) {
		m.mu.RLock()
		callbacks := append([]func(){}, m.callbacks...)
		m.mu.RUnlock()

		for _, cb := range callbacks {
			cb()
		}
	})
	m.v.WatchConfig()
	return nil
}

// AllSettings 获取所有配置
func (m *manager) AllSettings() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.AllSettings()
}
