package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// register 以 name 为键注册采集器，重复名称返回 ErrMetricExists
func (c *Client) register(name string, collector prometheus.Collector) error {
	if c.IsClosed() {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.metrics[name]; ok {
		return ErrMetricExists
	}
	if err := c.registry.Register(collector); err != nil {
		return err
	}
	c.metrics[name] = collector
	return nil
}

// NewCounter 创建并注册 Counter
func (c *Client) NewCounter(name, help string, labels []string) (*prometheus.CounterVec, error) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	if err := c.register(name, counter); err != nil {
		return nil, err
	}
	return counter, nil
}

// NewGauge 创建并注册 Gauge
func (c *Client) NewGauge(name, help string, labels []string) (*prometheus.GaugeVec, error) {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	if err := c.register(name, gauge); err != nil {
		return nil, err
	}
	return gauge, nil
}

// NewGaugeFunc 创建在采集时调用 fn 取值的 Gauge
func (c *Client) NewGaugeFunc(name, help string, fn func() float64) error {
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
	}, fn)
	return c.register(name, gauge)
}

// Get 按名称获取已注册的指标
func (c *Client) Get(name string) (prometheus.Collector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.metrics[name]
	return m, ok
}

// RegisterCollector 注册自定义采集器
func (c *Client) RegisterCollector(collector prometheus.Collector) error {
	if c.IsClosed() {
		return ErrClientClosed
	}
	return c.registry.Register(collector)
}
