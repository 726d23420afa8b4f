package serializer

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type peerStatus struct {
	Node   string `codec:"node" json:"node"`
	Ledger uint32 `codec:"ledger" json:"ledger"`
	Hash   []byte `codec:"hash" json:"hash"`
}

func TestMsgPack_EncodeDecode(t *testing.T) {
	t.Run("struct", func(t *testing.T) {
		original := &peerStatus{Node: "n1", Ledger: 42, Hash: []byte{0xDE, 0xAD}}

		data, err := Encode(original)
		require.NoError(t, err)
		assert.NotEmpty(t, data)

		var decoded peerStatus
		require.NoError(t, Decode(data, &decoded))
		assert.Equal(t, *original, decoded)
	})

	t.Run("generic map", func(t *testing.T) {
		data, err := Encode(map[string]any{"node": "n1", "peers": []string{"a", "b"}})
		require.NoError(t, err)

		var decoded any
		require.NoError(t, Decode(data, &decoded))
		m, ok := decoded.(map[string]any)
		require.True(t, ok, "generic maps decode as map[string]any, got %T", decoded)
		assert.Equal(t, "n1", m["node"])
	})

	t.Run("result does not alias pooled buffer", func(t *testing.T) {
		first, err := Encode("first")
		require.NoError(t, err)
		snapshot := append([]byte(nil), first...)

		_, err = Encode("second value overwriting the pooled buffer")
		require.NoError(t, err)
		assert.Equal(t, snapshot, first)
	})

	t.Run("invalid data", func(t *testing.T) {
		var decoded peerStatus
		assert.Error(t, Decode([]byte{0xC1}, &decoded))
	})
}

func TestMsgPack_Stream(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.Encode(&peerStatus{Node: "a", Ledger: 1}))
	require.NoError(t, enc.Encode(&peerStatus{Node: "b", Ledger: 2}))

	dec := NewDecoder(&buf)
	var a, b peerStatus
	require.NoError(t, dec.Decode(&a))
	require.NoError(t, dec.Decode(&b))
	assert.Equal(t, "a", a.Node)
	assert.Equal(t, uint32(2), b.Ledger)
}

func TestSerializers_RoundTrip(t *testing.T) {
	status := peerStatus{Node: "n1", Ledger: 7, Hash: []byte{1, 2, 3}}

	for _, s := range []Serializer{NewJSON(), NewMsgPack()} {
		t.Run(s.ContentType(), func(t *testing.T) {
			data, err := s.Serialize(status)
			require.NoError(t, err)

			var got peerStatus
			require.NoError(t, s.Deserialize(data, &got))
			assert.Equal(t, status, got)
		})
	}
}

func TestProto(t *testing.T) {
	s := NewProto()

	data, err := s.Serialize(wrapperspb.UInt32(1234))
	require.NoError(t, err)
	want, _ := proto.Marshal(wrapperspb.UInt32(1234))
	assert.Equal(t, want, data)

	var got wrapperspb.UInt32Value
	require.NoError(t, s.Deserialize(data, &got))
	assert.Equal(t, uint32(1234), got.GetValue())

	_, err = s.Serialize(struct{}{})
	assert.True(t, errors.Is(err, ErrInvalidProtoMessage))
	assert.True(t, errors.Is(s.Deserialize(data, &struct{}{}), ErrInvalidProtoMessage))
}

func TestRaw(t *testing.T) {
	s := NewRaw()

	data, err := s.Serialize([]byte{0xAA})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA}, data)

	data, err = s.Serialize("ping")
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), data)

	data, err = s.Serialize(map[string]int{"n": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(data))

	src := []byte{1, 2, 3}
	var out []byte
	require.NoError(t, s.Deserialize(src, &out))
	src[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, out)

	var str string
	require.NoError(t, s.Deserialize([]byte("pong"), &str))
	assert.Equal(t, "pong", str)
}

func TestByName(t *testing.T) {
	tests := map[string]string{
		"json":     "application/json",
		"PROTO":    "application/protobuf",
		"protobuf": "application/protobuf",
		"msgpack":  "application/msgpack",
		"raw":      "application/octet-stream",
		"":         "application/octet-stream",
	}
	for name, want := range tests {
		s, err := ByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, s.ContentType(), name)
	}

	_, err := ByName("xml")
	assert.True(t, errors.Is(err, ErrUnknownSerializer))
}

func BenchmarkEncode(b *testing.B) {
	status := &peerStatus{Node: "n1", Ledger: 7, Hash: bytes.Repeat([]byte{1}, 32)}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Encode(status)
	}
}

func BenchmarkDecode(b *testing.B) {
	data, _ := Encode(&peerStatus{Node: "n1", Ledger: 7, Hash: bytes.Repeat([]byte{1}, 32)})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var s peerStatus
		_ = Decode(data, &s)
	}
}
