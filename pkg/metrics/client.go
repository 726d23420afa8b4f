// Package metrics 管理进程内的 Prometheus 注册表，并按需通过 HTTP 暴露。
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lk2023060901/overlay/pkg/config"
	"github.com/lk2023060901/overlay/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Client Prometheus 客户端，实现 app.Server
type Client struct {
	config   *Config
	registry *prometheus.Registry
	logger   logger.Logger

	// 指标存储
	mu      sync.Mutex
	metrics map[string]prometheus.Collector

	// HTTP 服务器
	httpServer *http.Server
	listenAddr atomic.Value // string

	// 状态
	closed atomic.Bool
}

// New 创建 Prometheus 客户端，cfg 可以只包含部分字段
func New(cfg *Config, l logger.Logger) (*Client, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge metrics config: %w", err)
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}
	if l == nil {
		l = logger.NewNoop()
	}

	c := &Client{
		config:   newCfg,
		registry: prometheus.NewRegistry(),
		logger:   l.Named("metrics"),
		metrics:  make(map[string]prometheus.Collector),
	}

	// 注册默认采集器
	if config.Deref(newCfg.EnableGoCollector, false) {
		c.registry.MustRegister(collectors.NewGoCollector())
	}
	if config.Deref(newCfg.EnableProcessCollector, false) {
		c.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return c, nil
}

// Registry 获取底层 Registry，供其他组件注册自己的采集器
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 返回 HTTP Handler（用于集成到现有 HTTP 服务器）
func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		Registry:          c.registry,
		EnableOpenMetrics: true,
	})
}

// Config 获取配置
func (c *Client) Config() *Config {
	return c.config
}

// Start 启动独立的 HTTP 服务器，未启用时直接返回
func (c *Client) Start() error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if !c.config.HTTPServer.Enabled {
		return nil
	}

	ln, err := net.Listen("tcp", c.config.HTTPServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.config.HTTPServer.Addr, err)
	}
	c.listenAddr.Store(ln.Addr().String())

	mux := http.NewServeMux()
	mux.Handle(c.config.HTTPServer.Path, c.Handler())
	c.httpServer = &http.Server{
		Handler:      mux,
		ReadTimeout:  c.config.HTTPServer.Timeout,
		WriteTimeout: c.config.HTTPServer.Timeout,
	}

	go func() {
		if err := c.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("metrics http server failed", "error", err)
		}
	}()
	c.logger.Info("metrics listening", "addr", ln.Addr().String(), "path", c.config.HTTPServer.Path)
	return nil
}

// Addr 返回实际监听地址，未启动时为空
func (c *Client) Addr() string {
	addr, _ := c.listenAddr.Load().(string)
	return addr
}

// Stop 关闭 HTTP 服务器
func (c *Client) Stop() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.httpServer.Shutdown(ctx)
}

// IsClosed 检查客户端是否已关闭
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}
