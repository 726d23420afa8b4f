package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/overlay/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newBufferLogger 创建输出到 buf 的 JSON logger
func newBufferLogger(t *testing.T, cfg *Config, opts ...Option) (*BaseLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Format = JSONFormat
	l, err := New(cfg, append(opts, WithOutput(&buf))...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

// decodeLines 按行解析 JSON 日志
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

// TestNew 测试创建 Logger
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{name: "nil config uses default"},
		{name: "partial config", config: &Config{Level: DebugLevel, Format: JSONFormat}},
		{
			name:    "file enabled without path",
			config:  &Config{EnableFile: true},
			wantErr: ErrInvalidOutputPath,
		},
		{
			name:    "console disabled without file",
			config:  &Config{EnableConsole: config.Ptr(false)},
			wantErr: ErrNoOutputEnabled,
		},
		{
			name: "file only",
			config: &Config{
				EnableConsole: config.Ptr(false),
				EnableFile:    true,
				OutputPath:    filepath.Join(t.TempDir(), "peer.log"),
			},
		},
		{
			name:    "unknown level",
			config:  &Config{Level: "verbose"},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unknown rotation type",
			config:  &Config{Rotation: RotationConfig{Type: "weekly"}},
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || l == nil {
				t.Fatalf("New() = %v, %v", l, err)
			}
		})
	}
}

// TestLoggerLevels 测试日志级别过滤
func TestLoggerLevels(t *testing.T) {
	l, buf := newBufferLogger(t, &Config{Level: WarnLevel})

	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines at warn level, got %d: %s", len(lines), buf.String())
	}
	if lines[0]["level"] != "warn" || lines[1]["level"] != "error" {
		t.Errorf("Unexpected levels: %v, %v", lines[0]["level"], lines[1]["level"])
	}
}

// TestLoggerKeyValues 测试 key-value 与 zap.Field 混用
func TestLoggerKeyValues(t *testing.T) {
	l, buf := newBufferLogger(t, nil)

	l.Info("frame received",
		"type", 3,
		zap.String("category", "base"),
		"bytes", 9,
		"dangling",
	)

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	line := lines[0]
	if line["msg"] != "frame received" {
		t.Errorf("Unexpected msg: %v", line["msg"])
	}
	if line["type"] != float64(3) || line["bytes"] != float64(9) {
		t.Errorf("Unexpected numeric fields: %v", line)
	}
	if line["category"] != "base" {
		t.Errorf("Expected zap.Field passthrough, got %v", line["category"])
	}
	if line["!BADKEY"] != "dangling" {
		t.Errorf("Expected dangling value under !BADKEY, got %v", line["!BADKEY"])
	}
}

// TestLoggerWithFieldsAndNamed 测试派生 logger
func TestLoggerWithFieldsAndNamed(t *testing.T) {
	l, buf := newBufferLogger(t, nil, WithGlobalFields("node", "n1"))

	child := l.Named("tcp").Named("acceptor").WithFields("session_id", "abc")
	child.Info("accepted")
	l.Info("parent")

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0]["logger"] != "tcp.acceptor" {
		t.Errorf("Expected logger name tcp.acceptor, got %v", lines[0]["logger"])
	}
	if lines[0]["session_id"] != "abc" || lines[0]["node"] != "n1" {
		t.Errorf("Expected derived and global fields, got %v", lines[0])
	}
	if _, ok := lines[1]["session_id"]; ok {
		t.Error("Parent logger must not inherit child fields")
	}

	if same := l.WithFields(); same != Logger(l) {
		t.Error("WithFields without fields should return receiver")
	}
}

// TestLoggerContext 测试 context 字段提取
func TestLoggerContext(t *testing.T) {
	l, buf := newBufferLogger(t, nil, WithContextExtractor(SessionContextExtractor))

	ctx := ContextWithSession(context.Background(), "sess-1", "10.0.0.1:51235")
	l.InfoContext(ctx, "dispatch", "type", "ping")
	l.WarnContext(context.Background(), "no session")

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0]["session_id"] != "sess-1" || lines[0]["remote_addr"] != "10.0.0.1:51235" {
		t.Errorf("Expected session fields, got %v", lines[0])
	}
	if _, ok := lines[1]["session_id"]; ok {
		t.Error("Unexpected session_id without session context")
	}
}

// TestChainExtractors 测试提取器组合
func TestChainExtractors(t *testing.T) {
	static := func(context.Context) []zap.Field { return []zap.Field{zap.String("node", "n1")} }
	chained := ChainExtractors(DefaultContextExtractor, static, SessionContextExtractor)

	fields := chained(ContextWithSession(context.Background(), "s", ""))
	if len(fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != "node" || fields[1].Key != "session_id" {
		t.Errorf("Unexpected keys: %s, %s", fields[0].Key, fields[1].Key)
	}
}

// TestTruncateHook 测试长字段截断
func TestTruncateHook(t *testing.T) {
	l, buf := newBufferLogger(t, &Config{
		TruncateFields: []string{"payload"},
		TruncateLength: 8,
	})

	l.Info("frame", "payload", "0011223344556677889900", "other", "0011223344556677889900")

	lines := decodeLines(t, buf)
	if got := lines[0]["payload"]; got != "00112233...(truncated)" {
		t.Errorf("Expected truncated payload, got %v", got)
	}
	if got := lines[0]["other"]; got != "0011223344556677889900" {
		t.Errorf("Expected other field untouched, got %v", got)
	}
}

// TestHookDrop 测试钩子丢弃日志
func TestHookDrop(t *testing.T) {
	drop := HookFunc(func(entry zapcore.Entry, _ []zapcore.Field) bool {
		return !strings.HasPrefix(entry.Message, "noisy")
	})
	l, buf := newBufferLogger(t, nil, WithHooks(drop))

	l.Info("noisy heartbeat")
	l.Info("useful")

	lines := decodeLines(t, buf)
	if len(lines) != 1 || lines[0]["msg"] != "useful" {
		t.Errorf("Expected only useful line, got %s", buf.String())
	}
}

// TestFileOutput 测试按大小轮换的文件输出
func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peer.log")
	l, err := New(&Config{
		Format:     JSONFormat,
		EnableFile: true,
		OutputPath: path,
	}, WithOutput(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("to file", "k", "v")
	if err := l.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `"msg":"to file"`) {
		t.Errorf("Expected log line in file, got %q", data)
	}
}

// TestTimeRotationWriter 测试按时间轮换
func TestTimeRotationWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peer.log")
	w, err := NewRotationWriter(&RotationConfig{Type: RotationByTime, RotationTime: "bogus"}, path)
	if err != nil {
		t.Fatalf("NewRotationWriter() error = %v", err)
	}
	if _, err := w.Write([]byte("line\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := os.Lstat(path); err != nil {
		t.Errorf("Expected link at %s: %v", path, err)
	}

	if _, err := NewRotationWriter(&RotationConfig{}, ""); !errors.Is(err, ErrInvalidOutputPath) {
		t.Errorf("Expected ErrInvalidOutputPath, got %v", err)
	}
}

// TestDefaultLogger 测试默认 logger
func TestDefaultLogger(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	l, buf := newBufferLogger(t, nil)
	SetDefault(l)
	SetDefault(nil)

	Info("via default", "k", 1)
	Named("pkg").Warn("named")
	WithFields("a", "b").Error("with fields")

	lines := decodeLines(t, buf)
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %s", len(lines), buf.String())
	}
	if lines[1]["logger"] != "pkg" || lines[2]["a"] != "b" {
		t.Errorf("Unexpected default logger output: %v", lines)
	}
}

// TestNoopLogger 测试空 logger
func TestNoopLogger(t *testing.T) {
	var l Logger = NewNoop()
	l.Info("ignored", "k", "v")
	l.ErrorContext(context.Background(), "ignored")
	if l.Named("x") == nil || l.WithFields("k", "v") == nil {
		t.Error("Noop derived loggers must not be nil")
	}
	if err := l.Sync(); err != nil {
		t.Errorf("Sync() error = %v", err)
	}
}
