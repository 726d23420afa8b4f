package tcp

import (
	"github.com/lk2023060901/overlay/pkg/logger"
	"github.com/lk2023060901/overlay/pkg/network/traffic"
)

type options struct {
	logger  logger.Logger
	counter *traffic.Counter
	onPanic func(any)
}

// Option 配置 Acceptor 与 Connector 的可选组件
type Option func(*options)

// WithLogger 设置日志器
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTrafficCounter 设置流量计数器
func WithTrafficCounter(c *traffic.Counter) Option {
	return func(o *options) { o.counter = c }
}

// WithPanicHandler 设置会话回调 panic 时的额外处理，如上报错误追踪
func WithPanicHandler(fn func(p any)) Option {
	return func(o *options) { o.onPanic = fn }
}

func applyOptions(opts []Option) options {
	o := options{logger: logger.NewNoop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
