package session

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendQueueFull    = errors.New("send queue full")
	ErrNilMessage       = errors.New("nil message")
	ErrBroadcastFailed  = errors.New("broadcast partially failed")
	ErrCloseFailed      = errors.New("close partially failed")
	ErrAcceptorRequired = errors.New("acceptor is required in config")
)
