// pkg/network/traffic/traffic.go
// Package traffic 按流量分类统计收发的消息数与字节数，供外部限流策略读取。
package traffic

import (
	"github.com/lk2023060901/overlay/pkg/framer"
	"github.com/prometheus/client_golang/prometheus"
)

// Direction 流量方向
type Direction string

const (
	Inbound  Direction = "in"
	Outbound Direction = "out"
)

// Counter 流量计数器
type Counter struct {
	messages *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	window   *Window
}

// CounterOption Counter 可选项
type CounterOption func(*Counter)

// WithWindow 同时在滑动窗口中记录，供 Rate 查询
func WithWindow(w *Window) CounterOption {
	return func(c *Counter) { c.window = w }
}

// NewCounter 创建计数器并注册到 registerer，registerer 为 nil 时不注册
func NewCounter(registerer prometheus.Registerer, opts ...CounterOption) *Counter {
	c := &Counter{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "overlay",
			Subsystem: "traffic",
			Name:      "messages_total",
			Help:      "Total number of framed messages by traffic category and direction",
		}, []string{"category", "direction"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "overlay",
			Subsystem: "traffic",
			Name:      "bytes_total",
			Help:      "Total number of frame bytes (header included) by traffic category and direction",
		}, []string{"category", "direction"}),
	}

	for _, opt := range opts {
		opt(c)
	}

	if registerer != nil {
		registerer.MustRegister(c.messages, c.bytes)
	}
	return c
}

// Inbound 记录一条收到的消息
func (c *Counter) Inbound(msg *framer.Message) {
	c.Add(msg.Category(), Inbound, msg.Len())
}

// Outbound 记录一条发出的消息
func (c *Counter) Outbound(msg *framer.Message) {
	c.Add(msg.Category(), Outbound, msg.Len())
}

// Add 记录一条指定分类与方向的消息，nil 计数器忽略
func (c *Counter) Add(category framer.Category, dir Direction, size int) {
	if c == nil {
		return
	}
	labels := prometheus.Labels{"category": category.String(), "direction": string(dir)}
	c.messages.With(labels).Inc()
	c.bytes.With(labels).Add(float64(size))
	if c.window != nil {
		c.window.Record(category, dir, size)
	}
}

// Rate 返回滑动窗口内的速率，未配置窗口时返回零值
func (c *Counter) Rate(category framer.Category, dir Direction) Rate {
	if c == nil || c.window == nil {
		return Rate{}
	}
	return c.window.Rate(category, dir)
}

// Collectors 返回底层指标，用于自定义注册
func (c *Counter) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.messages, c.bytes}
}
