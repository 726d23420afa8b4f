package framer

import "github.com/cockroachdb/errors"

var (
	// ErrFrameTooLarge 消息体超过允许的最大长度
	ErrFrameTooLarge = errors.New("framer: frame too large")

	// ErrShortFrame 帧数据少于消息头声明的长度
	ErrShortFrame = errors.New("framer: short frame")

	// ErrLengthMismatch 序列化器报告的长度与实际写入不一致
	ErrLengthMismatch = errors.New("framer: length mismatch")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("framer: invalid config")

	// ErrUnknownCategory 未定义的流量分类
	ErrUnknownCategory = errors.New("framer: unknown category")
)
