package session

import (
	"context"
	"errors"
	"sync"

	"github.com/lk2023060901/overlay/pkg/framer"
)

// SessionManager 定义会话管理器的接口。
type SessionManager interface {
	// Add 添加一个会话。
	Add(session Session)
	// Remove 移除指定 ID 的会话。
	Remove(id string)
	// Get 获取指定 ID 的会话。
	Get(id string) (Session, bool)
	// Count 返回当前会话数量。
	Count() int
	// Range 遍历所有会话，若 f 返回 false 则停止遍历。
	Range(f func(session Session) bool)
	// Broadcast 向所有会话发送同一条消息。
	Broadcast(ctx context.Context, msg *framer.Message) error
	// Close 关闭并移除所有会话。
	Close() error
}

// BaseSessionManager 提供 SessionManager 接口的基础实现。
type BaseSessionManager struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewBaseSessionManager 创建一个新的基础会话管理器。
func NewBaseSessionManager() *BaseSessionManager {
	return &BaseSessionManager{
		sessions: make(map[string]Session),
	}
}

// Add 添加一个会话。
func (m *BaseSessionManager) Add(session Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID()] = session
}

// Remove 移除指定 ID 的会话。
func (m *BaseSessionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Get 获取指定 ID 的会话。
func (m *BaseSessionManager) Get(id string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Count 返回当前会话数量。
func (m *BaseSessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Range 遍历所有会话。
func (m *BaseSessionManager) Range(f func(session Session) bool) {
	for _, session := range m.snapshot() {
		if !f(session) {
			break
		}
	}
}

// Broadcast 向所有会话发送消息。
// 消息在会话间共享，不做拷贝。
func (m *BaseSessionManager) Broadcast(ctx context.Context, msg *framer.Message) error {
	var errs []error
	for _, s := range m.snapshot() {
		if err := s.Send(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrBroadcastFailed}, errs...)...)
	}
	return nil
}

// Close 关闭所有会话。
func (m *BaseSessionManager) Close() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]Session)
	m.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrCloseFailed}, errs...)...)
	}
	return nil
}

// snapshot 复制当前会话列表，回调期间不持有锁
func (m *BaseSessionManager) snapshot() []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}
