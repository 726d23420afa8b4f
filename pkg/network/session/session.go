// Package session 提供与传输无关的会话模型，会话之间传递的单位是 *framer.Message。
package session

import (
	"context"
	"sync"

	"github.com/lk2023060901/overlay/pkg/config"
	"github.com/lk2023060901/overlay/pkg/framer"
)

// Session 定义会话的基础接口。
type Session interface {
	// ID 返回会话的唯一标识。
	ID() string
	// Send 将消息放入发送队列，队列满时阻塞直到 ctx 结束或会话关闭。
	Send(ctx context.Context, msg *framer.Message) error
	// Close 关闭会话。
	Close() error
	// RemoteAddr 返回远程地址。
	RemoteAddr() string
	// Context 返回会话的 Context，用于生命周期管理。
	Context() context.Context
}

// BaseSession 提供 Session 接口的基础实现。
// 仅包含标识、发送队列和生命周期管理，具体传输负责消费 SendChan。
type BaseSession struct {
	id         string
	remoteAddr string
	ctx        context.Context
	cancel     context.CancelFunc
	sendCh     chan *framer.Message
	framer     framer.Framer
	closeOnce  sync.Once
}

// NewBaseSession 创建一个新的基础会话。
func NewBaseSession(id string, remoteAddr string, f framer.Framer, cfg *Config) *BaseSession {
	// 使用 MergeConfig 确保配置完整
	newCfg, _ := config.MergeConfig(DefaultConfig(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	return &BaseSession{
		id:         id,
		remoteAddr: remoteAddr,
		ctx:        ctx,
		cancel:     cancel,
		sendCh:     make(chan *framer.Message, newCfg.SendChannelSize),
		framer:     f,
	}
}

// ID 返回会话 ID。
func (s *BaseSession) ID() string {
	return s.id
}

// RemoteAddr 返回远程地址。
func (s *BaseSession) RemoteAddr() string {
	return s.remoteAddr
}

// Context 返回会话的 Context。
func (s *BaseSession) Context() context.Context {
	return s.ctx
}

// Send 将消息压入发送队列。
func (s *BaseSession) Send(ctx context.Context, msg *framer.Message) error {
	if msg == nil {
		return ErrNilMessage
	}
	if s.ctx.Err() != nil {
		return ErrConnectionClosed
	}
	select {
	case s.sendCh <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrConnectionClosed
	}
}

// TrySend 非阻塞发送，队列满时返回 ErrSendQueueFull。
func (s *BaseSession) TrySend(msg *framer.Message) error {
	if msg == nil {
		return ErrNilMessage
	}
	if s.ctx.Err() != nil {
		return ErrConnectionClosed
	}
	select {
	case s.sendCh <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close 取消会话 Context，可重复调用。
func (s *BaseSession) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}

// SendChan 返回发送队列，供传输层的写循环消费。
func (s *BaseSession) SendChan() <-chan *framer.Message {
	return s.sendCh
}

// Framer 返回消息帧处理器。
func (s *BaseSession) Framer() framer.Framer {
	return s.framer
}
