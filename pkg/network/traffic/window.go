package traffic

import (
	"fmt"
	"sync"
	"time"

	"github.com/lk2023060901/overlay/pkg/config"
	"github.com/lk2023060901/overlay/pkg/framer"
)

// WindowConfig 滑动窗口配置
type WindowConfig struct {
	// 窗口大小
	WindowSize time.Duration `mapstructure:"window_size" json:"window_size" yaml:"window_size" validate:"gt=0"`
	// 桶数量
	BucketCount int `mapstructure:"bucket_count" json:"bucket_count" yaml:"bucket_count" validate:"gt=0"`
}

// DefaultWindowConfig 默认配置（保障最小可用）
func DefaultWindowConfig() *WindowConfig {
	return &WindowConfig{
		WindowSize:  60 * time.Second,
		BucketCount: 60,
	}
}

// usage 单个分类单个方向的累计量
type usage struct {
	messages int64
	bytes    int64
}

// bucket 时间桶，按 (分类, 方向) 累计
type bucket struct {
	start time.Time
	usage map[key]usage
}

type key struct {
	category framer.Category
	dir      Direction
}

// Rate 窗口内的平均速率。窗口未满时按已统计的时长平均。
type Rate struct {
	// 每秒消息数
	MessagesPerSecond float64 `json:"messages_per_second"`
	// 每秒字节数
	BytesPerSecond float64 `json:"bytes_per_second"`
	// 窗口内总消息数
	Messages int64 `json:"messages"`
	// 窗口内总字节数
	Bytes int64 `json:"bytes"`
}

// Window 按流量分类统计最近一段时间的收发速率，供限流策略查询。
// 桶按写入与查询时的时间惰性轮转，不需要后台协程。
type Window struct {
	config  *WindowConfig
	width   time.Duration
	now     func() time.Time
	created time.Time

	mu      sync.Mutex
	buckets []bucket
	current int
}

// NewWindow 创建滑动窗口统计器
func NewWindow(cfg *WindowConfig) (*Window, error) {
	newCfg, err := config.MergeConfig(DefaultWindowConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge window config: %w", err)
	}
	if err := config.Validate(newCfg); err != nil {
		return nil, err
	}
	return newWindow(newCfg, time.Now), nil
}

func newWindow(cfg *WindowConfig, now func() time.Time) *Window {
	w := &Window{
		config:  cfg,
		width:   cfg.WindowSize / time.Duration(cfg.BucketCount),
		now:     now,
		buckets: make([]bucket, cfg.BucketCount),
	}
	if w.width <= 0 {
		w.width = time.Nanosecond
	}
	w.created = now()
	w.buckets[0].start = w.created
	return w
}

// advance 将当前桶推进到 t 所在的时间段，跳过的桶清空
func (w *Window) advance(t time.Time) {
	cur := &w.buckets[w.current]
	elapsed := t.Sub(cur.start)
	if elapsed < w.width {
		return
	}

	steps := int(elapsed / w.width)
	if steps > len(w.buckets) {
		steps = len(w.buckets)
	}
	start := cur.start.Add(time.Duration(int(elapsed/w.width)) * w.width)
	for i := 0; i < steps; i++ {
		w.current = (w.current + 1) % len(w.buckets)
		w.buckets[w.current] = bucket{}
	}
	w.buckets[w.current].start = start
}

// Record 记录一条消息
func (w *Window) Record(category framer.Category, dir Direction, size int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.advance(w.now())
	b := &w.buckets[w.current]
	if b.usage == nil {
		b.usage = make(map[key]usage)
	}
	k := key{category, dir}
	u := b.usage[k]
	u.messages++
	u.bytes += int64(size)
	b.usage[k] = u
}

// Rate 返回分类在指定方向上的窗口速率
func (w *Window) Rate(category framer.Category, dir Direction) Rate {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.advance(now)
	windowStart := now.Add(-w.config.WindowSize)

	var r Rate
	k := key{category, dir}
	for _, b := range w.buckets {
		if b.usage == nil || !b.start.After(windowStart) {
			continue
		}
		u := b.usage[k]
		r.Messages += u.messages
		r.Bytes += u.bytes
	}

	// 至少按一个桶宽计算，避免刚创建时放大速率
	span := min(w.config.WindowSize, max(now.Sub(w.created), w.width))
	seconds := span.Seconds()
	r.MessagesPerSecond = float64(r.Messages) / seconds
	r.BytesPerSecond = float64(r.Bytes) / seconds
	return r
}
