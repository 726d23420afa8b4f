package tcp

import (
	"github.com/lk2023060901/overlay/pkg/framer"
	"github.com/lk2023060901/overlay/pkg/network/session"
	"github.com/panjf2000/gnet/v2"
)

// eventCore Acceptor 与 Connector 共用的连接事件处理
type eventCore struct {
	framer         framer.Framer
	sessionConfig  *session.Config
	maxMessageSize int
	handler        session.SessionHandler
	dispatcher     *dispatcher
	opts           options
}

func newEventCore(f framer.Framer, handler session.SessionHandler, sendQueue, maxMessageSize, poolSize int, opts options) (*eventCore, error) {
	if handler == nil {
		handler = &session.NopSessionHandler{}
	}
	e := &eventCore{
		framer:         f,
		sessionConfig:  &session.Config{SendChannelSize: sendQueue},
		maxMessageSize: maxMessageSize,
		handler:        handler,
		opts:           opts,
	}
	d, err := newDispatcher(poolSize, func(p any) {
		e.opts.logger.Error("session handler panic", "panic", p)
		if e.opts.onPanic != nil {
			e.opts.onPanic(p)
		}
	})
	if err != nil {
		return nil, err
	}
	e.dispatcher = d
	return e, nil
}

// open 为新连接创建会话并投递 OnOpened
func (e *eventCore) open(c gnet.Conn) *TCPSession {
	s := NewTCPSession(c, e.framer, e.sessionConfig, e.opts.counter, e.opts.logger)
	c.SetContext(s)
	s.logger.Debug("session opened")
	e.dispatch(s, func() { e.handler.OnOpened(s) })
	return s
}

// close 结束会话写循环并投递 OnClosed
func (e *eventCore) close(c gnet.Conn, err error) {
	s, ok := c.Context().(*TCPSession)
	if !ok {
		return
	}
	_ = s.BaseSession.Close()
	s.logger.Debug("session closed", "error", err)
	e.dispatch(s, func() { e.handler.OnClosed(s, err) })
}

// traffic 切分入站帧并逐条投递 OnMessage，帧非法时关闭连接
func (e *eventCore) traffic(c gnet.Conn) gnet.Action {
	s, ok := c.Context().(*TCPSession)
	if !ok {
		return gnet.Close
	}

	err := readFrames(c, e.framer, e.maxMessageSize, func(msg *framer.Message) {
		e.opts.counter.Inbound(msg)
		e.dispatch(s, func() { e.handler.OnMessage(s, msg) })
	})
	if err != nil {
		s.logger.Warn("invalid inbound frame, closing", "error", err)
		e.dispatch(s, func() { e.handler.OnError(s, err) })
		return gnet.Close
	}
	return gnet.None
}

func (e *eventCore) dispatch(s *TCPSession, task func()) {
	if err := s.queue.push(e.dispatcher, task); err != nil {
		s.logger.Error("failed to dispatch session event", "error", err)
	}
}
