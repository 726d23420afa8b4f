package tcp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/lk2023060901/overlay/pkg/config"
	"github.com/lk2023060901/overlay/pkg/framer"
	"github.com/lk2023060901/overlay/pkg/network/session"
	"github.com/panjf2000/gnet/v2"
)

// Connector 实现 session.Connector 接口，基于 gnet 客户端。
// 一个 Connector 可以发起多条出站连接，共享同一组事件循环。
type Connector struct {
	gnet.BuiltinEventEngine
	*eventCore

	config *ClientConfig
	client *gnet.Client

	mu      sync.Mutex
	started bool
}

var _ session.Connector = (*Connector)(nil)

// pendingDial 在 OnOpen 之前作为连接上下文，用于把会话交还给 Connect
type pendingDial struct {
	ready chan *TCPSession
}

// NewConnector 创建一个新的 TCP 连接器。
func NewConnector(cfg *ClientConfig, f framer.Framer, handler session.SessionHandler, opts ...Option) (*Connector, error) {
	newCfg, err := config.MergeConfig(DefaultClientConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("%w: framer is required", ErrInvalidConfig)
	}

	o := applyOptions(opts)
	o.logger = o.logger.Named("tcp.connector")
	core, err := newEventCore(f, handler, newCfg.SendQueueSize,
		config.Deref(newCfg.MaxMessageSize, 0), config.Deref(newCfg.WorkerPoolSize, 0), o)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Connector{
		eventCore: core,
		config:    newCfg,
	}, nil
}

// Start 启动 gnet 客户端事件循环。
func (c *Connector) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}
	c.dispatcher.reboot()

	noDelay := gnet.TCPDelay
	if config.Deref(c.config.TCPNoDelay, false) {
		noDelay = gnet.TCPNoDelay
	}
	client, err := gnet.NewClient(
		c,
		gnet.WithReadBufferCap(c.config.ReadBufferSize),
		gnet.WithWriteBufferCap(c.config.WriteBufferSize),
		gnet.WithTCPKeepAlive(c.config.TCPKeepAlive),
		gnet.WithTCPNoDelay(noDelay),
	)
	if err != nil {
		return err
	}
	if err := client.Start(); err != nil {
		return err
	}

	c.client = client
	c.started = true
	return nil
}

// Stop 停止 gnet 客户端事件循环。
func (c *Connector) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started || c.client == nil {
		return nil
	}

	c.started = false
	defer c.dispatcher.release()
	return c.client.Stop()
}

// Connect 发起连接并返回会话，启用重连时按退避策略重试拨号。
func (c *Connector) Connect(ctx context.Context, addr string) (session.Session, error) {
	if err := c.Start(); err != nil {
		return nil, err
	}

	rc := c.config.Reconnect
	for attempt := 0; ; attempt++ {
		s, err := c.dial(ctx, addr)
		if err == nil {
			return s, nil
		}
		if !config.Deref(rc.Enable, false) || ctx.Err() != nil || (rc.MaxRetries > 0 && attempt >= rc.MaxRetries) {
			return nil, err
		}

		delay := rc.backoff(attempt)
		c.opts.logger.Warn("dial failed, retrying", "addr", addr, "attempt", attempt+1, "delay", delay, "error", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *Connector) dial(ctx context.Context, addr string) (*TCPSession, error) {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	if client == nil {
		return nil, ErrNotStarted
	}

	dialer := net.Dialer{Timeout: c.config.DialTimeout}
	nc, err := dialer.DialContext(ctx, c.config.Network, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	pending := &pendingDial{ready: make(chan *TCPSession, 1)}
	conn, err := client.EnrollContext(nc, pending)
	if err != nil {
		_ = nc.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	select {
	case s := <-pending.ready:
		return s, nil
	case <-ctx.Done():
		_ = conn.Close()
		return nil, ctx.Err()
	}
}

// OnOpen 实现 gnet.EventHandler。
func (c *Connector) OnOpen(conn gnet.Conn) ([]byte, gnet.Action) {
	pending, ok := conn.Context().(*pendingDial)
	s := c.open(conn)
	if ok {
		pending.ready <- s
	}
	return nil, gnet.None
}

// OnClose 实现 gnet.EventHandler。
func (c *Connector) OnClose(conn gnet.Conn, err error) gnet.Action {
	c.close(conn, err)
	return gnet.None
}

// OnTraffic 实现 gnet.EventHandler。
func (c *Connector) OnTraffic(conn gnet.Conn) gnet.Action {
	return c.traffic(conn)
}
