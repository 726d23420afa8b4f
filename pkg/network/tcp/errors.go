package tcp

import "errors"

var (
	// 配置错误
	ErrInvalidConfig = errors.New("tcp: invalid config")

	// 连接错误
	ErrConnectionFailed = errors.New("tcp: connection failed")
	ErrNotStarted       = errors.New("tcp: not started")

	// 编解码错误
	ErrMessageTooBig = errors.New("tcp: message too big")

	// 服务器错误
	ErrServerAlreadyStarted = errors.New("tcp: server already started")
	ErrStartTimeout         = errors.New("tcp: start timeout")
)
