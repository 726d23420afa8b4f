// pkg/serializer/serializer.go
// 消息体序列化：帧层只关心字节，结构化消息由这里的序列化器编码
package serializer

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/proto"
)

// 错误定义
var (
	ErrInvalidProtoMessage = errors.New("serializer: invalid protobuf message")
	ErrUnknownSerializer   = errors.New("serializer: unknown serializer")
)

// Serializer 序列化器接口
type Serializer interface {
	// Serialize 序列化
	Serialize(v any) ([]byte, error)
	// Deserialize 反序列化
	Deserialize(data []byte, v any) error
	// ContentType 内容类型（用于日志追踪）
	ContentType() string
}

// JSON JSON 序列化器
type JSON struct{}

// NewJSON 创建 JSON 序列化器
func NewJSON() *JSON {
	return &JSON{}
}

// Serialize 序列化为 JSON
func (s *JSON) Serialize(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Deserialize 从 JSON 反序列化
func (s *JSON) Deserialize(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ContentType 返回内容类型
func (s *JSON) ContentType() string {
	return "application/json"
}

// Proto Protobuf 序列化器
type Proto struct{}

// NewProto 创建 Protobuf 序列化器
func NewProto() *Proto {
	return &Proto{}
}

// Serialize 序列化为 Protobuf
func (s *Proto) Serialize(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidProtoMessage, "%T", v)
	}
	return proto.Marshal(msg)
}

// Deserialize 从 Protobuf 反序列化
func (s *Proto) Deserialize(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return errors.Wrapf(ErrInvalidProtoMessage, "%T", v)
	}
	return proto.Unmarshal(data, msg)
}

// ContentType 返回内容类型
func (s *Proto) ContentType() string {
	return "application/protobuf"
}

// Raw 原始字节序列化器，[]byte 与 string 原样传递，其他类型退化为 JSON
type Raw struct{}

// NewRaw 创建原始字节序列化器
func NewRaw() *Raw {
	return &Raw{}
}

// Serialize 序列化
func (s *Raw) Serialize(v any) ([]byte, error) {
	switch val := v.(type) {
	case []byte:
		return val, nil
	case string:
		return []byte(val), nil
	default:
		return json.Marshal(v)
	}
}

// Deserialize 反序列化，[]byte 目标会得到一份拷贝
func (s *Raw) Deserialize(data []byte, v any) error {
	switch ptr := v.(type) {
	case *[]byte:
		*ptr = append([]byte(nil), data...)
		return nil
	case *string:
		*ptr = string(data)
		return nil
	default:
		return json.Unmarshal(data, v)
	}
}

// ContentType 返回内容类型
func (s *Raw) ContentType() string {
	return "application/octet-stream"
}

// ByName 按名称获取序列化器：json、proto、msgpack、raw
func ByName(name string) (Serializer, error) {
	switch strings.ToLower(name) {
	case "json":
		return NewJSON(), nil
	case "proto", "protobuf":
		return NewProto(), nil
	case "msgpack":
		return NewMsgPack(), nil
	case "raw", "":
		return NewRaw(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownSerializer, "%q", name)
	}
}
