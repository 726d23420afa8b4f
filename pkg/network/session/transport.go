package session

import (
	"context"

	"github.com/lk2023060901/overlay/pkg/framer"
)

// Acceptor 监听并接受连接的接口。
type Acceptor interface {
	// Start 启动监听。
	Start() error
	// Stop 停止监听。
	Stop() error
}

// Connector 发起连接的接口。
type Connector interface {
	// Connect 发起连接并返回会话。
	Connect(ctx context.Context, addr string) (Session, error)
}

// SessionHandler 会话事件处理器。
type SessionHandler interface {
	// OnOpened 会话建立回调。
	OnOpened(s Session)
	// OnClosed 会话关闭回调。
	OnClosed(s Session, err error)
	// OnMessage 收到完整消息回调。
	OnMessage(s Session, msg *framer.Message)
	// OnError 会话出错回调，如帧校验失败。
	OnError(s Session, err error)
}

// NopSessionHandler 提供 SessionHandler 的空实现。
type NopSessionHandler struct{}

func (n *NopSessionHandler) OnOpened(s Session)                       {}
func (n *NopSessionHandler) OnClosed(s Session, err error)            {}
func (n *NopSessionHandler) OnMessage(s Session, msg *framer.Message) {}
func (n *NopSessionHandler) OnError(s Session, err error)             {}

var _ SessionHandler = (*NopSessionHandler)(nil)

// HandlerFuncs 以函数形式组装 SessionHandler，未设置的回调忽略。
type HandlerFuncs struct {
	Opened  func(s Session)
	Closed  func(s Session, err error)
	Message func(s Session, msg *framer.Message)
	Error   func(s Session, err error)
}

func (h HandlerFuncs) OnOpened(s Session) {
	if h.Opened != nil {
		h.Opened(s)
	}
}

func (h HandlerFuncs) OnClosed(s Session, err error) {
	if h.Closed != nil {
		h.Closed(s, err)
	}
}

func (h HandlerFuncs) OnMessage(s Session, msg *framer.Message) {
	if h.Message != nil {
		h.Message(s, msg)
	}
}

func (h HandlerFuncs) OnError(s Session, err error) {
	if h.Error != nil {
		h.Error(s, err)
	}
}
