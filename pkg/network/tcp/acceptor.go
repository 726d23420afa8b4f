package tcp

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lk2023060901/overlay/pkg/config"
	"github.com/lk2023060901/overlay/pkg/framer"
	"github.com/lk2023060901/overlay/pkg/network/session"
	"github.com/panjf2000/gnet/v2"
)

// Acceptor 实现 session.Acceptor 接口，基于 gnet 事件引擎。
type Acceptor struct {
	gnet.BuiltinEventEngine
	*eventCore

	config  *ServerConfig
	engine  gnet.Engine
	started atomic.Bool
	running atomic.Bool
}

const (
	attemptPending int32 = iota
	attemptBooted
	attemptAbandoned
)

// startAttempt 对应一次 Start 调用，超时后才完成启动的引擎会立即关闭
type startAttempt struct {
	*Acceptor
	state  atomic.Int32
	booted chan struct{}
}

// OnBoot 实现 gnet.EventHandler。
func (s *startAttempt) OnBoot(eng gnet.Engine) gnet.Action {
	if !s.state.CompareAndSwap(attemptPending, attemptBooted) {
		return gnet.Shutdown
	}
	s.engine = eng
	s.running.Store(true)
	close(s.booted)
	return gnet.None
}

var _ session.Acceptor = (*Acceptor)(nil)

// NewAcceptor 创建 Acceptor，cfg 可以只包含部分字段
func NewAcceptor(cfg *ServerConfig, f framer.Framer, handler session.SessionHandler, opts ...Option) (*Acceptor, error) {
	newCfg, err := config.MergeConfig(DefaultServerConfig(), cfg)
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
	o.logger = o.logger.Named("tcp.acceptor")
	core, err := newEventCore(f, handler, newCfg.SendQueueSize,
		config.Deref(newCfg.MaxMessageSize, 0), config.Deref(newCfg.WorkerPoolSize, 0), o)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Acceptor{
		eventCore: core,
		config:    newCfg,
	}, nil
}

// Start 在后台运行事件引擎，等待引擎启动完成或失败。
// 启动失败或超时后可以再次调用 Start。
func (a *Acceptor) Start() error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrServerAlreadyStarted
	}

	opts := []gnet.Option{
		gnet.WithMulticore(config.Deref(a.config.Multicore, false)),
		gnet.WithReusePort(config.Deref(a.config.ReusePort, false)),
		gnet.WithReuseAddr(config.Deref(a.config.ReuseAddr, false)),
		gnet.WithReadBufferCap(a.config.ReadBufferSize),
		gnet.WithWriteBufferCap(a.config.WriteBufferSize),
		gnet.WithTCPKeepAlive(a.config.TCPKeepAlive),
	}
	if config.Deref(a.config.TCPNoDelay, false) {
		opts = append(opts, gnet.WithTCPNoDelay(gnet.TCPNoDelay))
	} else {
		opts = append(opts, gnet.WithTCPNoDelay(gnet.TCPDelay))
	}
	if a.config.NumEventLoop > 0 {
		opts = append(opts, gnet.WithNumEventLoop(a.config.NumEventLoop))
	}

	protoAddr := fmt.Sprintf("%s://%s", a.config.Network, a.config.Addr)

	attempt := &startAttempt{Acceptor: a, booted: make(chan struct{})}
	errCh := make(chan error, 1)
	go func() {
		errCh <- gnet.Run(attempt, protoAddr, opts...)
	}()

	timer := time.NewTimer(a.config.StartTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		if attempt.state.CompareAndSwap(attemptPending, attemptAbandoned) {
			a.started.Store(false)
			if err == nil {
				return fmt.Errorf("engine on %s exited before boot", protoAddr)
			}
			return fmt.Errorf("failed to run engine on %s: %w", protoAddr, err)
		}
		// 引擎启动后又退出
		if err != nil {
			return fmt.Errorf("engine on %s exited: %w", protoAddr, err)
		}
		return nil
	case <-attempt.booted:
		a.opts.logger.Info("acceptor listening", "addr", protoAddr)
		return nil
	case <-timer.C:
		if attempt.state.CompareAndSwap(attemptPending, attemptAbandoned) {
			a.started.Store(false)
			return ErrStartTimeout
		}
		// 超时与启动同时发生，以启动为准
		<-attempt.booted
		a.opts.logger.Info("acceptor listening", "addr", protoAddr)
		return nil
	}
}

// Stop 停止事件引擎并释放协程池
func (a *Acceptor) Stop() error {
	if !a.running.CompareAndSwap(true, false) {
		return nil
	}
	defer a.dispatcher.release()
	return a.engine.Stop(context.Background())
}

// Addr 返回配置的监听地址
func (a *Acceptor) Addr() string {
	return a.config.Addr
}

// OnOpen 实现 gnet.EventHandler。
func (a *Acceptor) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	a.open(c)
	return nil, gnet.None
}

// OnClose 实现 gnet.EventHandler。
func (a *Acceptor) OnClose(c gnet.Conn, err error) gnet.Action {
	a.close(c, err)
	return gnet.None
}

// OnTraffic 实现 gnet.EventHandler。
func (a *Acceptor) OnTraffic(c gnet.Conn) gnet.Action {
	return a.traffic(c)
}
