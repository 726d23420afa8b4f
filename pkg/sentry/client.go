// Package sentry 将会话错误与回调 panic 上报到 Sentry。
package sentry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lk2023060901/overlay/pkg/config"
)

// Client Sentry 客户端，hub 为 nil 时表示未启用
type Client struct {
	hub    *sentry.Hub
	config *Config
	closed atomic.Bool

	stats struct {
		eventsTotal    atomic.Uint64
		eventsCaptured atomic.Uint64
		eventsDropped  atomic.Uint64
	}
}

// Stats 统计信息
type Stats struct {
	EventsTotal    uint64
	EventsCaptured uint64
	EventsDropped  uint64
}

// New 创建 Sentry 客户端，cfg 可以只包含部分字段
func New(cfg *Config) (*Client, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge sentry config: %w", err)
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}
	if !newCfg.Enabled {
		return &Client{config: newCfg}, nil
	}
	return newClient(newCfg, newCfg.toClientOptions())
}

func newClient(cfg *Config, opts sentry.ClientOptions) (*Client, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentry client: %w", err)
	}

	// 独立 Hub，不污染全局
	hub := sentry.NewHub(client, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for key, value := range cfg.Tags {
			scope.SetTag(key, value)
		}
	})

	return &Client{hub: hub, config: cfg}, nil
}

// Enabled 是否会真正上报
func (c *Client) Enabled() bool {
	return c != nil && c.hub != nil
}

// CaptureError 上报错误，tags 只作用于本次事件
func (c *Client) CaptureError(err error, tags map[string]string) *sentry.EventID {
	if err == nil || !c.Enabled() || c.closed.Load() {
		return nil
	}

	var eventID *sentry.EventID
	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		eventID = c.hub.CaptureException(err)
	})
	c.count(eventID)
	return eventID
}

// RecoverPanic 上报已恢复的 panic，不重新抛出
func (c *Client) RecoverPanic(recovered any) *sentry.EventID {
	if recovered == nil || !c.Enabled() || c.closed.Load() {
		return nil
	}

	eventID := c.hub.RecoverWithContext(context.Background(), recovered)
	c.count(eventID)
	return eventID
}

func (c *Client) count(eventID *sentry.EventID) {
	c.stats.eventsTotal.Add(1)
	if eventID != nil && *eventID != "" {
		c.stats.eventsCaptured.Add(1)
	} else {
		c.stats.eventsDropped.Add(1)
	}
}

// Flush 等待所有事件上报完成
func (c *Client) Flush(timeout time.Duration) bool {
	if !c.Enabled() {
		return true
	}
	return c.hub.Flush(timeout)
}

// Close 刷新剩余事件并关闭客户端，可作为 app.Closer 使用
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return ErrClientClosed
	}
	if c.Enabled() {
		c.hub.Flush(c.config.ShutdownTimeout)
	}
	return nil
}

// IsClosed 是否已关闭
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}

// Stats 获取统计信息
func (c *Client) Stats() Stats {
	return Stats{
		EventsTotal:    c.stats.eventsTotal.Load(),
		EventsCaptured: c.stats.eventsCaptured.Load(),
		EventsDropped:  c.stats.eventsDropped.Load(),
	}
}
