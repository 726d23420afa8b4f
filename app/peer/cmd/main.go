package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lk2023060901/overlay/pkg/app"
	"github.com/lk2023060901/overlay/pkg/framer"
	"github.com/lk2023060901/overlay/pkg/logger"
	"github.com/lk2023060901/overlay/pkg/metrics"
	"github.com/lk2023060901/overlay/pkg/network/tcp"
	"github.com/lk2023060901/overlay/pkg/network/traffic"
	"github.com/lk2023060901/overlay/pkg/sentry"
)

// Config Peer 服务配置
type Config struct {
	Log     logger.Config             `mapstructure:"log"`
	Loggers map[string]*logger.Config `mapstructure:"loggers"`

	// 入站监听
	TCP tcp.ServerConfig `mapstructure:"tcp"`

	// 出站连接
	Client tcp.ClientConfig `mapstructure:"client"`

	// 启动后主动连接的节点
	Peers []string `mapstructure:"peers"`

	Framer framer.Config `mapstructure:"framer"`

	// 探测消息体编码：msgpack/json
	Codec string `mapstructure:"codec"`

	Metrics metrics.Config `mapstructure:"metrics"`

	// 分类速率统计窗口
	Traffic traffic.WindowConfig `mapstructure:"traffic"`

	// 会话错误上报
	Sentry sentry.Config `mapstructure:"sentry"`
}

func main() {
	var cfg Config

	// 1. 加载配置
	if err := app.LoadConfig(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	l, err := logger.New(&cfg.Log, logger.WithContextExtractor(logger.SessionContextExtractor))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(l)

	if err := run(&cfg, l); err != nil {
		l.Error("peer exited with error", "error", err)
		_ = l.Sync()
		os.Exit(1)
	}
}

func run(cfg *Config, l logger.Logger) error {
	application, cleanup, err := initApp(cfg, l)
	if err != nil {
		return err
	}
	defer cleanup()
	return application.Run()
}

// peerDialer 启动时异步连接配置中的节点
type peerDialer struct {
	ctx       context.Context
	connector *tcp.Connector
	peers     []string
	logger    logger.Logger
}

func (d *peerDialer) Start() error {
	if err := d.connector.Start(); err != nil {
		return err
	}
	for _, addr := range d.peers {
		go func() {
			if _, err := d.connector.Connect(d.ctx, addr); err != nil {
				d.logger.Warn("failed to connect peer", "addr", addr, "error", err)
			}
		}()
	}
	return nil
}

func (d *peerDialer) Stop() error {
	return d.connector.Stop()
}
