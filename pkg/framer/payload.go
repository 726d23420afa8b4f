// pkg/framer/payload.go
// 结构化消息的序列化适配：编码器只需要知道精确长度并能写入定长缓冲区
package framer

import (
	"github.com/lk2023060901/overlay/pkg/serializer"
	"google.golang.org/protobuf/proto"
)

// Serializable 可以被打包进消息帧的结构化消息。
// Size 必须返回 MarshalTo 实际写入的字节数，两者不一致属于实现方的错误。
type Serializable interface {
	// Size 返回编码后的精确字节数
	Size() int

	// MarshalTo 将编码结果写入 dst（长度恰好为 Size()），返回写入字节数
	MarshalTo(dst []byte) (int, error)
}

// Raw 已经序列化好的字节
type Raw []byte

// Size 实现 Serializable
func (r Raw) Size() int {
	return len(r)
}

// MarshalTo 实现 Serializable
func (r Raw) MarshalTo(dst []byte) (int, error) {
	return copy(dst, r), nil
}

// protoPayload protobuf 消息适配
type protoPayload struct {
	msg proto.Message
}

// Proto 将 protobuf 消息适配为 Serializable，编码直接写入帧缓冲区，不产生中间拷贝
func Proto(msg proto.Message) Serializable {
	return protoPayload{msg: msg}
}

// Size 实现 Serializable，同时缓存各字段长度供 MarshalTo 复用
func (p protoPayload) Size() int {
	return proto.MarshalOptions{}.Size(p.msg)
}

// MarshalTo 实现 Serializable
func (p protoPayload) MarshalTo(dst []byte) (int, error) {
	out, err := proto.MarshalOptions{UseCachedSize: true}.MarshalAppend(dst[:0:len(dst)], p.msg)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

// Encoded 使用 serializer 预先编码 v，失败时原样返回序列化器的错误
func Encoded(s serializer.Serializer, v any) (Serializable, error) {
	data, err := s.Serialize(v)
	if err != nil {
		return nil, err
	}
	return Raw(data), nil
}
