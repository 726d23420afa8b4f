package session

import (
	"context"
	"sync"

	"github.com/lk2023060901/overlay/pkg/config"
	"github.com/lk2023060901/overlay/pkg/framer"
)

// Server 通用的服务端实现。
type Server struct {
	config *ServerConfig
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewServer 完全由 Config 驱动进行初始化。
// 使用 MergeConfig 补全缺失的参数和默认组件（默认 Manager, NopHandler 等）。
func NewServer(cfg *ServerConfig) *Server {
	newCfg, _ := config.MergeConfig(DefaultServerConfig(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config: newCfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetAcceptor 注入 Acceptor，通常与 ManagedHandler 配合使用。
func (s *Server) SetAcceptor(a Acceptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Acceptor = a
}

// Start 启动服务端。
func (s *Server) Start() error {
	s.mu.Lock()
	acceptor := s.config.Acceptor
	s.mu.Unlock()
	if acceptor == nil {
		return ErrAcceptorRequired
	}
	return acceptor.Start()
}

// Stop 停止服务端，关闭全部会话。
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	acceptor := s.config.Acceptor
	s.mu.Unlock()

	var err error
	if acceptor != nil {
		err = acceptor.Stop()
	}
	if s.config.Manager != nil {
		_ = s.config.Manager.Close()
	}
	return err
}

// SessionManager 返回会话管理器。
func (s *Server) SessionManager() SessionManager {
	return s.config.Manager
}

// Handler 返回会话处理器。
func (s *Server) Handler() SessionHandler {
	return s.config.Handler
}

// Config 返回服务端配置。
func (s *Server) Config() *ServerConfig {
	return s.config
}

// ManagedHandler 返回包装后的处理器，会话打开与关闭时自动加入或移出管理器。
func (s *Server) ManagedHandler() SessionHandler {
	return &autoManagerHandler{
		manager: s.config.Manager,
		handler: s.config.Handler,
	}
}

// ManagedAcceptor 用 ManagedHandler 构建 Acceptor 并注入服务端。
func (s *Server) ManagedAcceptor(factory func(SessionHandler) Acceptor) Acceptor {
	a := factory(s.ManagedHandler())
	s.SetAcceptor(a)
	return a
}

// 内部包装一个 SessionHandler，用于自动将会话加入/移除管理器。
type autoManagerHandler struct {
	manager SessionManager
	handler SessionHandler
}

func (h *autoManagerHandler) OnOpened(s Session) {
	h.manager.Add(s)
	h.handler.OnOpened(s)
}

func (h *autoManagerHandler) OnClosed(s Session, err error) {
	h.manager.Remove(s.ID())
	h.handler.OnClosed(s, err)
}

func (h *autoManagerHandler) OnMessage(s Session, msg *framer.Message) {
	h.handler.OnMessage(s, msg)
}

func (h *autoManagerHandler) OnError(s Session, err error) {
	h.handler.OnError(s, err)
}
