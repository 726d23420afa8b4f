package metrics

import "errors"

var (
	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("metrics: invalid config")

	// ErrMetricExists 指标已存在
	ErrMetricExists = errors.New("metrics: metric already exists")

	// ErrClientClosed 客户端已关闭
	ErrClientClosed = errors.New("metrics: client closed")
)
