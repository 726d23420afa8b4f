package logger

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/overlay/pkg/config"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultRotationTime = 24 * time.Hour
	defaultMaxAgeTime   = 7 * 24 * time.Hour
	defaultPattern      = ".%Y%m%d%H"
)

// NewRotationWriter 创建轮换 writer，仅在 EnableFile=true 时调用
func NewRotationWriter(cfg *RotationConfig, outputPath string) (io.Writer, error) {
	if outputPath == "" {
		return nil, ErrInvalidOutputPath
	}
	if cfg.Type == RotationByTime {
		return newTimeRotationWriter(cfg, outputPath)
	}
	return newSizeRotationWriter(cfg, outputPath), nil
}

// newSizeRotationWriter 按大小轮换 (lumberjack)
func newSizeRotationWriter(cfg *RotationConfig, outputPath string) io.Writer {
	return &lumberjack.Logger{
		Filename:   outputPath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   config.Deref(cfg.Compress, false),
		LocalTime:  true,
	}
}

// newTimeRotationWriter 按时间轮换 (file-rotatelogs)，当前文件通过软链接 outputPath 访问
func newTimeRotationWriter(cfg *RotationConfig, outputPath string) (io.Writer, error) {
	rotationTime := parseDurationOr(cfg.RotationTime, defaultRotationTime)
	maxAge := parseDurationOr(cfg.MaxAgeTime, defaultMaxAgeTime)

	pattern := cfg.RotationPattern
	if pattern == "" {
		pattern = defaultPattern
	}

	w, err := rotatelogs.New(
		outputPath+pattern,
		rotatelogs.WithLinkName(outputPath),
		rotatelogs.WithRotationTime(rotationTime),
		rotatelogs.WithMaxAge(maxAge),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create time rotation writer for %s", outputPath)
	}
	return w, nil
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
