package sentry

import (
	"github.com/lk2023060901/overlay/pkg/network/session"
)

// sessionReporter 上报 OnError 的错误，其余回调原样透传
type sessionReporter struct {
	session.SessionHandler
	client *Client
}

// WrapHandler 包装会话处理器，client 未启用时直接返回 next
func WrapHandler(next session.SessionHandler, c *Client) session.SessionHandler {
	if next == nil {
		next = &session.NopSessionHandler{}
	}
	if !c.Enabled() {
		return next
	}
	return &sessionReporter{SessionHandler: next, client: c}
}

func (r *sessionReporter) OnError(s session.Session, err error) {
	r.client.CaptureError(err, map[string]string{
		"session_id":  s.ID(),
		"remote_addr": s.RemoteAddr(),
	})
	r.SessionHandler.OnError(s, err)
}
