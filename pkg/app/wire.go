package app

import (
	"github.com/google/wire"
)

// AppComponents 由 Wire 注入或手工组装的组件
type AppComponents struct {
	Servers []Server
	Closers []Closer
}

// ProviderSet 导出给 Wire 使用
var ProviderSet = wire.NewSet(
	NewBaseApp,
)

// InitApp 将组件绑定到 BaseApp。Servers 按顺序启动，Closers 在 Shutdown 时逆序关闭。
func InitApp(app *BaseApp, comps AppComponents) Application {
	app.AppendServer(comps.Servers...)
	app.AppendCloser(comps.Closers...)
	return app
}

// CloserFunc 将函数适配为 Closer
type CloserFunc func() error

func (f CloserFunc) Close() error {
	return f()
}
