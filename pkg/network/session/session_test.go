package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/overlay/pkg/framer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage(t *testing.T, typ uint16, payload string) *framer.Message {
	t.Helper()
	msg, err := framer.Build(framer.Raw(payload), typ)
	require.NoError(t, err)
	return msg
}

func TestBaseSession_Send(t *testing.T) {
	s := NewBaseSession("s1", "127.0.0.1:1", nil, &Config{SendChannelSize: 1})
	assert.Equal(t, "s1", s.ID())
	assert.Equal(t, "127.0.0.1:1", s.RemoteAddr())

	msg := testMessage(t, framer.TypePing, "a")
	require.NoError(t, s.Send(context.Background(), msg))

	t.Run("queue full blocks until ctx done", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, s.Send(ctx, msg), context.DeadlineExceeded)
		assert.ErrorIs(t, s.TrySend(msg), ErrSendQueueFull)
	})

	t.Run("nil message", func(t *testing.T) {
		assert.ErrorIs(t, s.Send(context.Background(), nil), ErrNilMessage)
		assert.ErrorIs(t, s.TrySend(nil), ErrNilMessage)
	})

	got := <-s.SendChan()
	assert.Same(t, msg, got)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Context().Err(), context.Canceled)
	assert.ErrorIs(t, s.Send(context.Background(), msg), ErrConnectionClosed)
	assert.ErrorIs(t, s.TrySend(msg), ErrConnectionClosed)
}

func TestBaseSession_DefaultConfig(t *testing.T) {
	s := NewBaseSession("s", "", nil, nil)
	assert.Equal(t, DefaultConfig().SendChannelSize, cap(s.sendCh))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{}).Validate())
	assert.Error(t, (&Config{SendChannelSize: -1}).Validate())

	sc := &ServerConfig{}
	require.NoError(t, sc.Validate())
	assert.NotNil(t, sc.Session)
}

func TestBaseSessionManager(t *testing.T) {
	m := NewBaseSessionManager()
	a := NewBaseSession("a", "", nil, &Config{SendChannelSize: 4})
	b := NewBaseSession("b", "", nil, &Config{SendChannelSize: 4})
	m.Add(a)
	m.Add(b)
	assert.Equal(t, 2, m.Count())

	got, ok := m.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	visited := 0
	m.Range(func(Session) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)

	msg := testMessage(t, framer.TypePing, "x")
	require.NoError(t, m.Broadcast(context.Background(), msg))
	assert.Same(t, msg, <-a.SendChan())
	assert.Same(t, msg, <-b.SendChan())

	m.Remove("a")
	_, ok = m.Get("a")
	assert.False(t, ok)

	_ = b.Close()
	m.Add(a)
	err := m.Broadcast(context.Background(), msg)
	assert.ErrorIs(t, err, ErrBroadcastFailed)
	assert.ErrorIs(t, err, ErrConnectionClosed)

	require.NoError(t, m.Close())
	assert.Zero(t, m.Count())
	assert.Error(t, a.Context().Err())
}

type fakeAcceptor struct {
	handler SessionHandler
	started bool
	stopped bool
	err     error
}

func (f *fakeAcceptor) Start() error { f.started = true; return f.err }
func (f *fakeAcceptor) Stop() error  { f.stopped = true; return nil }

func TestServer_ManagedAcceptor(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
	)
	record := func(e string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}

	srv := NewServer(&ServerConfig{Handler: HandlerFuncs{
		Opened:  func(Session) { record("open") },
		Closed:  func(Session, error) { record("close") },
		Message: func(Session, *framer.Message) { record("msg") },
		Error:   func(Session, error) { record("err") },
	}})

	fa := &fakeAcceptor{}
	srv.ManagedAcceptor(func(h SessionHandler) Acceptor {
		fa.handler = h
		return fa
	})
	require.NoError(t, srv.Start())
	assert.True(t, fa.started)

	s := NewBaseSession("peer", "", nil, nil)
	fa.handler.OnOpened(s)
	assert.Equal(t, 1, srv.SessionManager().Count())
	fa.handler.OnMessage(s, testMessage(t, framer.TypePing, ""))
	fa.handler.OnError(s, errors.New("boom"))
	fa.handler.OnClosed(s, nil)
	assert.Zero(t, srv.SessionManager().Count())
	assert.Equal(t, []string{"open", "msg", "err", "close"}, events)

	require.NoError(t, srv.Stop())
	assert.True(t, fa.stopped)
}

func TestServer_NoAcceptor(t *testing.T) {
	srv := NewServer(nil)
	assert.ErrorIs(t, srv.Start(), ErrAcceptorRequired)
	assert.NotNil(t, srv.Handler())
	assert.NoError(t, srv.Stop())
}

func TestNopSessionHandler(t *testing.T) {
	var h SessionHandler = &NopSessionHandler{}
	s := NewBaseSession("x", "", nil, nil)
	h.OnOpened(s)
	h.OnMessage(s, nil)
	h.OnError(s, nil)
	h.OnClosed(s, nil)

	var empty SessionHandler = HandlerFuncs{}
	empty.OnOpened(s)
	empty.OnClosed(s, nil)
}
