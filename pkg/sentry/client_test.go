package sentry

import (
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/lk2023060901/overlay/pkg/network/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (r *recorder) beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return event
}

func (r *recorder) last(t *testing.T) *sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events)
	return r.events[len(r.events)-1]
}

func newTestClient(t *testing.T, tags map[string]string) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Tags = tags
	c, err := newClient(cfg, sentry.ClientOptions{
		SampleRate: 1.0,
		BeforeSend: rec.beforeSend,
	})
	require.NoError(t, err)
	return c, rec
}

func TestNew_Disabled(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	assert.False(t, c.Enabled())
	assert.Nil(t, c.CaptureError(errors.New("boom"), nil))
	assert.Nil(t, c.RecoverPanic("boom"))
	assert.True(t, c.Flush(0))
	assert.Equal(t, Stats{}, c.Stats())

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Close(), ErrClientClosed)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(&Config{Enabled: true})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(&Config{SampleRate: 2})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestClient_CaptureError(t *testing.T) {
	c, rec := newTestClient(t, map[string]string{"service": "peer"})

	id := c.CaptureError(errors.New("frame too large"), map[string]string{"session_id": "s1"})
	require.NotNil(t, id)

	ev := rec.last(t)
	assert.Equal(t, "peer", ev.Tags["service"])
	assert.Equal(t, "s1", ev.Tags["session_id"])
	require.NotEmpty(t, ev.Exception)
	assert.Equal(t, "frame too large", ev.Exception[len(ev.Exception)-1].Value)

	// 单次事件的标签不残留到后续事件
	c.CaptureError(errors.New("again"), nil)
	_, ok := rec.last(t).Tags["session_id"]
	assert.False(t, ok)

	assert.Nil(t, c.CaptureError(nil, nil))
	assert.Equal(t, uint64(2), c.Stats().EventsCaptured)
}

func TestClient_RecoverPanic(t *testing.T) {
	c, rec := newTestClient(t, nil)

	require.NotNil(t, c.RecoverPanic("handler exploded"))
	assert.Equal(t, sentry.LevelFatal, rec.last(t).Level)
	assert.Nil(t, c.RecoverPanic(nil))
}

func TestClient_ClosedDropsEvents(t *testing.T) {
	c, _ := newTestClient(t, nil)
	require.NoError(t, c.Close())
	assert.True(t, c.IsClosed())
	assert.Nil(t, c.CaptureError(errors.New("late"), nil))
}

func TestWrapHandler(t *testing.T) {
	c, rec := newTestClient(t, nil)

	var forwarded error
	h := WrapHandler(session.HandlerFuncs{
		Error: func(s session.Session, err error) { forwarded = err },
	}, c)

	s := session.NewBaseSession("s1", "10.0.0.1:51235", nil, nil)
	defer s.Close()

	errFrame := errors.New("invalid frame")
	h.OnError(s, errFrame)

	assert.Equal(t, errFrame, forwarded)
	ev := rec.last(t)
	assert.Equal(t, "s1", ev.Tags["session_id"])
	assert.Equal(t, "10.0.0.1:51235", ev.Tags["remote_addr"])

	disabled, err := New(nil)
	require.NoError(t, err)
	next := &session.NopSessionHandler{}
	assert.Same(t, next, WrapHandler(next, disabled))
}
