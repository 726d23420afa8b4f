package app

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/lk2023060901/overlay/pkg/logger"
)

// LoggerRegistry 具名日志表，如 "tcp"、"session"
type LoggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]logger.Logger
}

func NewLoggerRegistry() *LoggerRegistry {
	return &LoggerRegistry{
		loggers: make(map[string]logger.Logger),
	}
}

// Register 注册一个具名 Logger，同名覆盖
func (r *LoggerRegistry) Register(name string, l logger.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggers[name] = l
}

// Get 获取一个具名 Logger，如果不存在则返回 nil
func (r *LoggerRegistry) Get(name string) logger.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loggers[name]
}

// Names 返回已注册的名称（有序）
func (r *LoggerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.loggers))
}

// SyncAll 同步所有已注册的 Logger
func (r *LoggerRegistry) SyncAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var errs []error
	for name, l := range r.loggers {
		if err := l.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("sync logger %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// InitLoggers 按配置创建具名 Logger，opts 作用于每一个。
// 任一创建失败时不注册任何 Logger。
func (r *LoggerRegistry) InitLoggers(configs map[string]*logger.Config, opts ...logger.Option) error {
	built := make(map[string]logger.Logger, len(configs))
	for name, cfg := range configs {
		l, err := logger.New(cfg, opts...)
		if err != nil {
			return fmt.Errorf("init logger %q: %w", name, err)
		}
		built[name] = l.Named(name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	maps.Copy(r.loggers, built)
	return nil
}
