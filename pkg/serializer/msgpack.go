// pkg/serializer/msgpack.go
package serializer

import (
	"io"
	"reflect"

	"github.com/hashicorp/go-msgpack/v2/codec"
	"github.com/lk2023060901/overlay/pkg/pool/bytebuff"
)

// msgpackHandle msgpack 编解码配置：字符串按 string 解码，泛型 map 统一为 map[string]any
var msgpackHandle = &codec.MsgpackHandle{}

func init() {
	msgpackHandle.MapType = reflect.TypeOf(map[string]any{})
	msgpackHandle.RawToString = true
	msgpackHandle.WriteExt = true
}

// Encode 使用 msgpack 编码，编码过程使用池化缓冲区，返回独立的切片
func Encode(v any) ([]byte, error) {
	buf := bytebuff.Get()
	defer bytebuff.Put(buf)

	if err := codec.NewEncoder(buf, msgpackHandle).Encode(v); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.B...), nil
}

// Decode 使用 msgpack 解码
func Decode(data []byte, v any) error {
	return codec.NewDecoderBytes(data, msgpackHandle).Decode(v)
}

// NewEncoder 创建流式 msgpack 编码器
func NewEncoder(w io.Writer) *codec.Encoder {
	return codec.NewEncoder(w, msgpackHandle)
}

// NewDecoder 创建流式 msgpack 解码器
func NewDecoder(r io.Reader) *codec.Decoder {
	return codec.NewDecoder(r, msgpackHandle)
}

// MsgPack msgpack 序列化器
type MsgPack struct{}

// NewMsgPack 创建 msgpack 序列化器
func NewMsgPack() *MsgPack {
	return &MsgPack{}
}

// Serialize 序列化为 msgpack
func (s *MsgPack) Serialize(v any) ([]byte, error) {
	return Encode(v)
}

// Deserialize 从 msgpack 反序列化
func (s *MsgPack) Deserialize(data []byte, v any) error {
	return Decode(data, v)
}

// ContentType 返回内容类型
func (s *MsgPack) ContentType() string {
	return "application/msgpack"
}
