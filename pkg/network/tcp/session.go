package tcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/lk2023060901/overlay/pkg/framer"
	"github.com/lk2023060901/overlay/pkg/logger"
	"github.com/lk2023060901/overlay/pkg/network/session"
	"github.com/lk2023060901/overlay/pkg/network/traffic"
	"github.com/panjf2000/gnet/v2"
)

// TCPSession 基于 gnet 连接的会话实现，服务端和客户端通用。
type TCPSession struct {
	*session.BaseSession
	conn    gnet.Conn
	counter *traffic.Counter
	logger  logger.Logger
	queue   serialQueue
}

var _ session.Session = (*TCPSession)(nil)

// NewTCPSession 创建一个新的 gnet TCP 会话并启动写循环。
func NewTCPSession(conn gnet.Conn, f framer.Framer, cfg *session.Config, counter *traffic.Counter, l logger.Logger) *TCPSession {
	id := uuid.New().String()
	remote := ""
	if addr := conn.RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	s := &TCPSession{
		BaseSession: session.NewBaseSession(id, remote, f, cfg),
		conn:        conn,
		counter:     counter,
		logger:      l.WithFields("session_id", id, "remote_addr", remote),
	}
	go s.writeLoop()
	return s
}

// writeLoop 将发送队列中的消息交给 gnet 异步写出。
// 消息在写完成回调之前由回调闭包持有。
func (s *TCPSession) writeLoop() {
	ctx := s.Context()
	for {
		select {
		case msg := <-s.SendChan():
			err := s.conn.AsyncWrite(msg.Bytes(), func(_ gnet.Conn, err error) error {
				if err != nil {
					s.logger.Debug("async write failed", "type", framer.TypeName(msg.Type()), "error", err)
					return nil
				}
				s.counter.Outbound(msg)
				return nil
			})
			if err != nil {
				s.logger.Warn("failed to queue write", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// LogContext 返回携带会话字段的 context，供 logger 的 Context 方法使用。
func (s *TCPSession) LogContext() context.Context {
	return logger.ContextWithSession(s.Context(), s.ID(), s.RemoteAddr())
}

// Close 关闭会话。
func (s *TCPSession) Close() error {
	_ = s.BaseSession.Close()
	return s.conn.Close()
}

// Conn 返回底层 gnet 连接。
func (s *TCPSession) Conn() gnet.Conn {
	return s.conn
}
