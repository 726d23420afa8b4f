package main

import (
	"fmt"

	"github.com/lk2023060901/overlay/app/peer/internal/handler"
	"github.com/lk2023060901/overlay/pkg/app"
	"github.com/lk2023060901/overlay/pkg/framer"
	"github.com/lk2023060901/overlay/pkg/logger"
	"github.com/lk2023060901/overlay/pkg/metrics"
	"github.com/lk2023060901/overlay/pkg/network/session"
	"github.com/lk2023060901/overlay/pkg/network/tcp"
	"github.com/lk2023060901/overlay/pkg/network/traffic"
	"github.com/lk2023060901/overlay/pkg/sentry"
	"github.com/lk2023060901/overlay/pkg/serializer"
)

// provideFramer 提供帧编解码器
func provideFramer(cfg *Config) (framer.Framer, error) {
	fr, err := framer.New(&cfg.Framer)
	if err != nil {
		return nil, fmt.Errorf("failed to create framer: %w", err)
	}
	return fr, nil
}

// provideCodec 提供探测消息体编码，默认 msgpack
func provideCodec(cfg *Config) (serializer.Serializer, error) {
	name := cfg.Codec
	if name == "" {
		name = "msgpack"
	}
	return serializer.ByName(name)
}

func provideMetrics(cfg *Config, l logger.Logger) (*metrics.Client, error) {
	mc, err := metrics.New(&cfg.Metrics, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}
	return mc, nil
}

// provideTrafficCounter 提供按分类统计的流量计数器
func provideTrafficCounter(cfg *Config, mc *metrics.Client) (*traffic.Counter, error) {
	window, err := traffic.NewWindow(&cfg.Traffic)
	if err != nil {
		return nil, fmt.Errorf("failed to create traffic window: %w", err)
	}
	return traffic.NewCounter(mc.Registry(), traffic.WithWindow(window)), nil
}

func provideSentry(cfg *Config) (*sentry.Client, error) {
	reporter, err := sentry.New(&cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentry client: %w", err)
	}
	return reporter, nil
}

// provideSessionHandler 提供业务 Handler，错误经 sentry 上报
func provideSessionHandler(l logger.Logger, fr framer.Framer, codec serializer.Serializer, reporter *sentry.Client) session.SessionHandler {
	return sentry.WrapHandler(handler.New(l, fr, codec), reporter)
}

// provideTransportOptions 提供 Acceptor 与 Connector 共用的选项
func provideTransportOptions(l logger.Logger, counter *traffic.Counter, reporter *sentry.Client) []tcp.Option {
	return []tcp.Option{
		tcp.WithLogger(l),
		tcp.WithTrafficCounter(counter),
		tcp.WithPanicHandler(func(p any) { reporter.RecoverPanic(p) }),
	}
}

// provideSessionServer 提供 Session Server 并挂载 TCP Acceptor
func provideSessionServer(cfg *Config, fr framer.Framer, h session.SessionHandler, opts []tcp.Option) (*session.Server, error) {
	sessServer := session.NewServer(&session.ServerConfig{Handler: h})
	acceptor, err := tcp.NewAcceptor(&cfg.TCP, fr, sessServer.ManagedHandler(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create acceptor: %w", err)
	}
	sessServer.SetAcceptor(acceptor)
	return sessServer, nil
}

func provideAppOptions(cfg *Config, l logger.Logger) []app.Option {
	return []app.Option{
		app.WithName("peer"),
		app.WithLogger(l),
		app.WithNamedLoggers(cfg.Loggers),
		app.WithLoggerOptions(logger.WithContextExtractor(logger.SessionContextExtractor)),
	}
}

func provideAppComponents(
	cfg *Config,
	baseApp *app.BaseApp,
	fr framer.Framer,
	mc *metrics.Client,
	sessServer *session.Server,
	reporter *sentry.Client,
	opts []tcp.Option,
) (app.AppComponents, error) {
	if err := mc.NewGaugeFunc("peer_sessions", "Number of open peer sessions", func() float64 {
		return float64(sessServer.SessionManager().Count())
	}); err != nil {
		return app.AppComponents{}, err
	}

	comps := app.AppComponents{
		Servers: []app.Server{mc, sessServer},
		Closers: []app.Closer{reporter},
	}

	// 出站节点
	if len(cfg.Peers) > 0 {
		connector, err := tcp.NewConnector(&cfg.Client, fr, sessServer.ManagedHandler(), opts...)
		if err != nil {
			return app.AppComponents{}, fmt.Errorf("failed to create connector: %w", err)
		}
		comps.Servers = append(comps.Servers, &peerDialer{
			ctx:       baseApp.Context(),
			connector: connector,
			peers:     cfg.Peers,
			logger:    baseApp.AppLogger().Named("peer.dialer"),
		})
	}
	return comps, nil
}
