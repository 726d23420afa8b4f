package framer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFramer(t testing.TB, maxBody uint32) Framer {
	t.Helper()
	f, err := New(&Config{MaxBodyBytes: maxBody})
	require.NoError(t, err)
	return f
}

// concatFrames 构建若干帧并拼接成一段字节流
func concatFrames(t testing.TB, payloads ...[]byte) ([]*Message, []byte) {
	t.Helper()
	var (
		msgs   []*Message
		stream []byte
	)
	for i, p := range payloads {
		msg, err := Build(Raw(p), uint16(i+1))
		require.NoError(t, err)
		msgs = append(msgs, msg)
		stream = append(stream, msg.Bytes()...)
	}
	return msgs, stream
}

func drain(t *testing.T, a *Assembler) []*Message {
	t.Helper()
	var out []*Message
	for {
		msg, err := a.Next()
		require.NoError(t, err)
		if msg == nil {
			return out
		}
		out = append(out, msg)
	}
}

func TestAssembler_Incomplete(t *testing.T) {
	a := NewAssembler(newTestFramer(t, 1024))

	msg, err := a.Next()
	assert.NoError(t, err)
	assert.Nil(t, msg)

	a.Push([]byte{0x00, 0x00, 0x00, 0x03, 0x01})
	_, ok := a.Header()
	assert.False(t, ok)
	msg, err = a.Next()
	assert.NoError(t, err)
	assert.Nil(t, msg)

	a.Push([]byte{0x02, 0xAA})
	h, ok := a.Header()
	require.True(t, ok)
	assert.Equal(t, Header{BodyLength: 3, Type: 258}, h)
	msg, err = a.Next()
	assert.NoError(t, err)
	assert.Nil(t, msg)
	assert.Equal(t, 7, a.Buffered())

	a.Push([]byte{0xBB, 0xCC})
	msg, err = a.Next()
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x03, 0x01, 0x02, 0xAA, 0xBB, 0xCC}, msg.Bytes())
	assert.Equal(t, 0, a.Buffered())
}

func TestAssembler_MultipleFramesOneChunk(t *testing.T) {
	want, stream := concatFrames(t, []byte("a"), nil, []byte("ccc"))

	a := NewAssembler(newTestFramer(t, 1024))
	a.Push(stream)
	got := drain(t, a)

	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "frame %d", i)
	}
	assert.Equal(t, 0, a.Buffered())
}

func TestAssembler_ChunkingInvariance(t *testing.T) {
	want, stream := concatFrames(t,
		[]byte{0xAA, 0xBB, 0xCC},
		nil,
		bytes.Repeat([]byte{0x11}, 40),
		[]byte{0x01},
	)

	for size := 1; size <= len(stream); size++ {
		a := NewAssembler(newTestFramer(t, 1024))
		var got []*Message
		for off := 0; off < len(stream); off += size {
			end := min(off+size, len(stream))
			a.Push(stream[off:end])
			got = append(got, drain(t, a)...)
		}

		require.Len(t, got, len(want), "chunk size %d", size)
		for i := range want {
			assert.True(t, want[i].Equal(got[i]), "chunk size %d frame %d", size, i)
		}
		assert.Equal(t, 0, a.Buffered())
	}
}

func TestAssembler_FrameTooLarge(t *testing.T) {
	a := NewAssembler(newTestFramer(t, 4))
	// 只有消息头即可判定超限
	a.Push([]byte{0x00, 0x00, 0x00, 0x05, 0x00, 0x01})

	msg, err := a.Next()
	assert.Nil(t, msg)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestAssembler_PushEmpty(t *testing.T) {
	a := NewAssembler(newTestFramer(t, 4))
	a.Push(nil)
	a.Push([]byte{})
	assert.Equal(t, 0, a.Buffered())
	assert.Empty(t, a.chunks)
}

func TestAssembler_Reset(t *testing.T) {
	a := NewAssembler(newTestFramer(t, 1024))
	a.Push([]byte{0x00, 0x00, 0x00, 0x09})
	a.Reset()
	assert.Equal(t, 0, a.Buffered())

	_, stream := concatFrames(t, []byte("x"))
	a.Push(stream)
	got := drain(t, a)
	require.Len(t, got, 1)
	assert.Equal(t, []byte("x"), got[0].Payload())
}

func TestAssembler_ZeroCopyWithinChunk(t *testing.T) {
	_, stream := concatFrames(t, []byte("abc"), []byte("de"))

	a := NewAssembler(newTestFramer(t, 1024))
	a.Push(stream)
	got := drain(t, a)
	require.Len(t, got, 2)

	// 整帧落在同一数据块内时共享底层内存
	assert.Same(t, &stream[0], &got[0].Bytes()[0])
	assert.Equal(t, got[0].Len(), cap(got[0].Bytes()))
}

func BenchmarkAssembler(b *testing.B) {
	_, stream := concatFrames(b, bytes.Repeat([]byte{0x01}, 100), bytes.Repeat([]byte{0x02}, 300))
	f := newTestFramer(b, 1024)
	b.ReportAllocs()
	b.SetBytes(int64(len(stream)))
	for i := 0; i < b.N; i++ {
		a := NewAssembler(f)
		a.Push(stream[:7])
		a.Push(stream[7:])
		for {
			msg, _ := a.Next()
			if msg == nil {
				break
			}
		}
	}
}
