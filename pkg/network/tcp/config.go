package tcp

import (
	"fmt"
	"time"

	"github.com/lk2023060901/overlay/pkg/config"
)

// ServerConfig 服务端配置
type ServerConfig struct {
	// 监听地址，如 "0.0.0.0:51235"
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr" validate:"required,hostname_port"`

	// 网络类型，tcp/tcp4/tcp6
	Network string `mapstructure:"network" json:"network" yaml:"network" validate:"omitempty,oneof=tcp tcp4 tcp6"`

	// 是否启用多核，默认 true
	Multicore *bool `mapstructure:"multicore" json:"multicore" yaml:"multicore"`

	// 事件循环数量，0 表示使用 CPU 核心数
	NumEventLoop int `mapstructure:"num_event_loop" json:"num_event_loop" yaml:"num_event_loop" validate:"gte=0"`

	// 是否启用端口复用，默认 true
	ReusePort *bool `mapstructure:"reuse_port" json:"reuse_port" yaml:"reuse_port"`

	// 是否启用地址复用，默认 true
	ReuseAddr *bool `mapstructure:"reuse_addr" json:"reuse_addr" yaml:"reuse_addr"`

	// 读缓冲区大小
	ReadBufferSize int `mapstructure:"read_buffer_size" json:"read_buffer_size" yaml:"read_buffer_size" validate:"gte=0"`

	// 写缓冲区大小
	WriteBufferSize int `mapstructure:"write_buffer_size" json:"write_buffer_size" yaml:"write_buffer_size" validate:"gte=0"`

	// 单帧最大字节数（含消息头），超过时断开连接；0 表示只受 framer 限制
	MaxMessageSize *int `mapstructure:"max_message_size" json:"max_message_size" yaml:"max_message_size" validate:"omitempty,gte=0"`

	// 发送队列大小
	SendQueueSize int `mapstructure:"send_queue_size" json:"send_queue_size" yaml:"send_queue_size" validate:"gte=0"`

	// 处理器协程池大小，0 表示在事件循环中直接回调
	WorkerPoolSize *int `mapstructure:"worker_pool_size" json:"worker_pool_size" yaml:"worker_pool_size" validate:"omitempty,gte=0"`

	// TCP KeepAlive 间隔
	TCPKeepAlive time.Duration `mapstructure:"tcp_keep_alive" json:"tcp_keep_alive" yaml:"tcp_keep_alive"`

	// 是否禁用 Nagle 算法（启用 TCP_NODELAY），默认 true
	TCPNoDelay *bool `mapstructure:"tcp_no_delay" json:"tcp_no_delay" yaml:"tcp_no_delay"`

	// 等待事件引擎启动的超时
	StartTimeout time.Duration `mapstructure:"start_timeout" json:"start_timeout" yaml:"start_timeout"`
}

// DefaultServerConfig 返回默认服务端配置
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:            "0.0.0.0:51235",
		Network:         "tcp",
		Multicore:       config.Ptr(true),
		NumEventLoop:    0,
		ReusePort:       config.Ptr(true),
		ReuseAddr:       config.Ptr(true),
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		MaxMessageSize:  config.Ptr(64<<20 + 6),
		SendQueueSize:   256,
		WorkerPoolSize:  config.Ptr(1024),
		TCPKeepAlive:    30 * time.Second,
		TCPNoDelay:      config.Ptr(true),
		StartTimeout:    5 * time.Second,
	}
}

// Validate 验证服务端配置
func (c *ServerConfig) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	if err := config.Validate(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ClientConfig 客户端配置
type ClientConfig struct {
	// 网络类型，tcp/tcp4/tcp6
	Network string `mapstructure:"network" json:"network" yaml:"network" validate:"omitempty,oneof=tcp tcp4 tcp6"`

	// 读缓冲区大小
	ReadBufferSize int `mapstructure:"read_buffer_size" json:"read_buffer_size" yaml:"read_buffer_size" validate:"gte=0"`

	// 写缓冲区大小
	WriteBufferSize int `mapstructure:"write_buffer_size" json:"write_buffer_size" yaml:"write_buffer_size" validate:"gte=0"`

	// 单帧最大字节数（含消息头），0 表示只受 framer 限制
	MaxMessageSize *int `mapstructure:"max_message_size" json:"max_message_size" yaml:"max_message_size" validate:"omitempty,gte=0"`

	// 发送队列大小
	SendQueueSize int `mapstructure:"send_queue_size" json:"send_queue_size" yaml:"send_queue_size" validate:"gte=0"`

	// 处理器协程池大小，0 表示在事件循环中直接回调
	WorkerPoolSize *int `mapstructure:"worker_pool_size" json:"worker_pool_size" yaml:"worker_pool_size" validate:"omitempty,gte=0"`

	// 连接超时
	DialTimeout time.Duration `mapstructure:"dial_timeout" json:"dial_timeout" yaml:"dial_timeout"`

	// TCP KeepAlive 间隔
	TCPKeepAlive time.Duration `mapstructure:"tcp_keep_alive" json:"tcp_keep_alive" yaml:"tcp_keep_alive"`

	// 是否禁用 Nagle 算法（启用 TCP_NODELAY），默认 true
	TCPNoDelay *bool `mapstructure:"tcp_no_delay" json:"tcp_no_delay" yaml:"tcp_no_delay"`

	// 重连配置
	Reconnect ReconnectConfig `mapstructure:"reconnect" json:"reconnect" yaml:"reconnect"`
}

// DefaultClientConfig 返回默认客户端配置
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Network:         "tcp",
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		MaxMessageSize:  config.Ptr(64<<20 + 6),
		SendQueueSize:   256,
		WorkerPoolSize:  config.Ptr(256),
		DialTimeout:     10 * time.Second,
		TCPKeepAlive:    30 * time.Second,
		TCPNoDelay:      config.Ptr(true),
		Reconnect:       DefaultReconnectConfig(),
	}
}

// Validate 验证客户端配置
func (c *ClientConfig) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	if err := config.Validate(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ReconnectConfig 拨号重试配置
type ReconnectConfig struct {
	// 是否启用拨号重试，默认 true
	Enable *bool `mapstructure:"enable" json:"enable" yaml:"enable"`

	// 最大重试次数（0 = 直到 ctx 结束）
	MaxRetries int `mapstructure:"max_retries" json:"max_retries" yaml:"max_retries" validate:"gte=0"`

	// 初始延迟
	InitialDelay time.Duration `mapstructure:"initial_delay" json:"initial_delay" yaml:"initial_delay"`

	// 最大延迟
	MaxDelay time.Duration `mapstructure:"max_delay" json:"max_delay" yaml:"max_delay"`

	// 延迟倍数
	Multiplier float64 `mapstructure:"multiplier" json:"multiplier" yaml:"multiplier" validate:"gte=0"`
}

// DefaultReconnectConfig 返回默认重连配置
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		Enable:       config.Ptr(true),
		MaxRetries:   0,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// backoff 返回第 attempt 次重试前的等待时间（attempt 从 0 开始）
func (c ReconnectConfig) backoff(attempt int) time.Duration {
	d := float64(c.InitialDelay)
	mult := c.Multiplier
	if mult < 1 {
		mult = 1
	}
	for i := 0; i < attempt; i++ {
		d *= mult
		if c.MaxDelay > 0 && d >= float64(c.MaxDelay) {
			return c.MaxDelay
		}
	}
	return time.Duration(d)
}
