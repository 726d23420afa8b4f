package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lk2023060901/overlay/pkg/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，OVERLAY_LOG_LEVEL 对应 log.level
const EnvPrefix = "OVERLAY"

var (
	configPath string
	logPath    string
)

// LoadConfig 使用进程命令行参数加载配置，见 LoadConfigFrom
func LoadConfig(target any, opts ...config.Option) error {
	return LoadConfigFrom(pflag.CommandLine, os.Args[1:], target, opts...)
}

// LoadConfigFrom 集成 pkg/config 提供统一加载能力
// 严格遵守优先级：1. 命令行显式参数 > 2. 环境变量 > 3. 配置文件 > 4. 默认值
//
// 显式指定（--config 或 OVERLAY_CONFIG）的配置文件必须存在；
// 未指定且默认路径下没有配置文件时只使用默认值与环境变量。
func LoadConfigFrom(fs *pflag.FlagSet, args []string, target any, opts ...config.Option) error {
	execDir, err := GetExecDir()
	if err != nil {
		return fmt.Errorf("failed to get executable directory: %w", err)
	}

	defaultConfig := filepath.Join(execDir, "config.yaml")
	defaultLog := filepath.Join(execDir, "logs", "overlay.log")

	if fs.Lookup("config") == nil {
		fs.StringVarP(&configPath, "config", "c", defaultConfig, "path to config file")
	}
	if fs.Lookup("log.path") == nil {
		fs.StringVar(&logPath, "log.path", defaultLog, "output path for logs")
	}

	if !fs.Parsed() {
		if err := fs.Parse(args); err != nil {
			return fmt.Errorf("failed to parse flags: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// OVERLAY_LOG_LEVEL -> log.level
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// 优先级：Flag 显式指定 > 环境变量 OVERLAY_CONFIG > 默认物理路径
	finalConfigPath := configPath
	explicit := fs.Changed("config")
	if !explicit {
		if envConfig := os.Getenv(EnvPrefix + "_CONFIG"); envConfig != "" {
			finalConfigPath = envConfig
			explicit = true
		}
	}

	_, statErr := os.Stat(finalConfigPath)
	switch {
	case statErr == nil:
	case os.IsNotExist(statErr) && !explicit:
		finalConfigPath = ""
	case os.IsNotExist(statErr):
		return fmt.Errorf("%w: %s", config.ErrConfigFileNotFound, finalConfigPath)
	default:
		return fmt.Errorf("failed to stat config file: %w", statErr)
	}
	configPath = finalConfigPath

	// 最低优先级的默认值，会被配置文件和环境变量覆盖
	v.SetDefault("log.output_path", defaultLog)

	// 命令行显式使用了 --log.path 时覆盖所有来源
	if fs.Changed("log.path") {
		v.Set("log.output_path", logPath)
		v.Set("log.enable_file", true)
	}

	mgr := config.NewManager(append(opts, config.WithViper(v))...)

	if configPath != "" {
		if err := mgr.LoadFile(configPath); err != nil {
			return err
		}
	}

	if err := mgr.Unmarshal(target); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 获取最终生效的日志路径，文件输出开启时创建目录
	logPath = v.GetString("log.output_path")
	if v.GetBool("log.enable_file") {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	return nil
}

// GetExecDir 获取可执行文件所在目录（处理符号链接）
func GetExecDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	realPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		return filepath.Dir(execPath), nil
	}
	return filepath.Dir(realPath), nil
}

// GetConfigPath 返回最终使用的配置文件路径，未使用配置文件时为空
func GetConfigPath() string {
	return configPath
}

// GetLogPath 返回最终生效的日志路径
func GetLogPath() string {
	return logPath
}
