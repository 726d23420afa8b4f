package metrics

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/lk2023060901/overlay/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestClient(t *testing.T, cfg *Config) *Client {
	t.Helper()
	if cfg == nil {
		cfg = &Config{Namespace: "test"}
	}
	c, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Stop() })
	return c
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Namespace != "overlay" {
		t.Errorf("Expected Namespace=overlay, got %s", cfg.Namespace)
	}
	if cfg.HTTPServer.Enabled {
		t.Error("Expected HTTPServer disabled by default")
	}
	if cfg.HTTPServer.Path != "/metrics" {
		t.Errorf("Expected Path=/metrics, got %s", cfg.HTTPServer.Path)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{name: "valid config", config: DefaultConfig()},
		{name: "empty namespace", config: &Config{}, wantErr: true},
		{
			name:    "http server enabled without addr",
			config:  &Config{Namespace: "test", HTTPServer: HTTPServerConfig{Enabled: true}},
			wantErr: true,
		},
		{name: "http server disabled", config: &Config{Namespace: "test"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestNewCounter(t *testing.T) {
	c := newTestClient(t, nil)

	counter, err := c.NewCounter("frames_total", "Total frames", []string{"category"})
	if err != nil {
		t.Fatalf("NewCounter() error = %v", err)
	}
	counter.WithLabelValues("base").Add(3)

	if got := testutil.ToFloat64(counter.WithLabelValues("base")); got != 3 {
		t.Errorf("Expected 3, got %v", got)
	}

	if _, err := c.NewCounter("frames_total", "dup", []string{"category"}); !errors.Is(err, ErrMetricExists) {
		t.Errorf("Expected ErrMetricExists, got %v", err)
	}

	got, ok := c.Get("frames_total")
	if !ok || got != prometheus.Collector(counter) {
		t.Error("Expected to find counter")
	}
}

func TestNewGaugeFunc(t *testing.T) {
	c := newTestClient(t, nil)

	sessions := 2.0
	if err := c.NewGaugeFunc("sessions", "Open sessions", func() float64 { return sessions }); err != nil {
		t.Fatalf("NewGaugeFunc() error = %v", err)
	}
	gauge, err := c.NewGauge("queue_depth", "Queue depth", []string{"session"})
	if err != nil {
		t.Fatalf("NewGauge() error = %v", err)
	}
	gauge.WithLabelValues("a").Set(7)

	expected := `
# HELP test_sessions Open sessions
# TYPE test_sessions gauge
test_sessions 2
`
	if err := testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "test_sessions"); err != nil {
		t.Error(err)
	}
}

func TestHTTPServer(t *testing.T) {
	c := newTestClient(t, &Config{
		Namespace:  "test",
		HTTPServer: HTTPServerConfig{Enabled: true, Addr: "127.0.0.1:0"},
	})
	if _, err := c.NewCounter("hits_total", "Hits", nil); err != nil {
		t.Fatalf("NewCounter() error = %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://" + c.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "test_hits_total") {
		t.Errorf("Expected test_hits_total in body, got %s", body)
	}

	if err := c.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if !c.IsClosed() {
		t.Error("Expected client closed")
	}
	if _, err := c.NewCounter("late_total", "late", nil); !errors.Is(err, ErrClientClosed) {
		t.Errorf("Expected ErrClientClosed, got %v", err)
	}
}

func TestNew_DisableCollectors(t *testing.T) {
	c := newTestClient(t, &Config{
		Namespace:              "test",
		EnableGoCollector:      config.Ptr(false),
		EnableProcessCollector: config.Ptr(false),
	})

	mfs, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(mfs) != 0 {
		t.Errorf("Expected no default collectors, got %d families", len(mfs))
	}

	def := newTestClient(t, nil)
	if n, _ := testutil.GatherAndCount(def.Registry(), "go_goroutines"); n != 1 {
		t.Errorf("Expected go collector registered by default, got %d", n)
	}
}
