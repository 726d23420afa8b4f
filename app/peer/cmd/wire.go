//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/lk2023060901/overlay/pkg/app"
	"github.com/lk2023060901/overlay/pkg/logger"
)

func initApp(cfg *Config, l logger.Logger) (app.Application, func(), error) {
	panic(wire.Build(
		// 1. 基础框架 (BaseApp)
		app.ProviderSet,
		provideAppOptions,

		// 2. Framer 与探测编码
		provideFramer,
		provideCodec,

		// 3. 指标与流量统计
		provideMetrics,
		provideTrafficCounter,

		// 4. 错误上报
		provideSentry,

		// 5. 会话服务与 TCP Acceptor
		provideSessionHandler,
		provideTransportOptions,
		provideSessionServer,

		// 6. 组装
		provideAppComponents,
		app.InitApp,
	))
}
