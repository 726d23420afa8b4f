// pkg/framer/header.go
// 消息头的编码与解析
//
// 帧格式（大端序）:
//
//	0      4      6
//	┌──────┬──────┬──────────────────┐
//	│ size │ type │ payload ...      │
//	│ u32  │ u16  │ size bytes       │
//	└──────┴──────┴──────────────────┘
package framer

import "encoding/binary"

// HeaderBytes 消息头固定长度: bodyLength(4) + type(2)
const HeaderBytes = 6

// MaxBodyLength 消息头能表达的最大消息体长度
const MaxBodyLength = 1<<32 - 1

// Header 消息头
type Header struct {
	// BodyLength 消息体字节数，不含消息头
	BodyLength uint32
	// Type 消息类型标签
	Type uint16
}

// FrameSize 返回完整帧长度（消息头 + 消息体）
func (h Header) FrameSize() int {
	return HeaderBytes + int(h.BodyLength)
}

// putHeader 将消息头写入 dst 前 HeaderBytes 字节
func putHeader(dst []byte, h Header) {
	binary.BigEndian.PutUint32(dst[0:4], h.BodyLength)
	binary.BigEndian.PutUint16(dst[4:6], h.Type)
}

// ParseHeader 从连续字节中解析消息头。
// 可用字节不足 HeaderBytes 时 ok 为 false，表示需要继续接收数据。
// 不会修改、复制或持有 b。
func ParseHeader(b []byte) (h Header, ok bool) {
	if len(b) < HeaderBytes {
		return Header{}, false
	}
	return Header{
		BodyLength: binary.BigEndian.Uint32(b[0:4]),
		Type:       binary.BigEndian.Uint16(b[4:6]),
	}, true
}

// BodyLength 读取消息体长度
func BodyLength(b []byte) (uint32, bool) {
	h, ok := ParseHeader(b)
	return h.BodyLength, ok
}

// TypeTag 读取消息类型
func TypeTag(b []byte) (uint16, bool) {
	h, ok := ParseHeader(b)
	return h.Type, ok
}
