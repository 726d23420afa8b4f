// pkg/framer/message.go
// Message 消息帧：消息头 + 消息体，构建后只读
package framer

import (
	"bytes"

	"github.com/cockroachdb/errors"
)

// Message 已打包的消息帧。
//
// Message 独占其底层缓冲区，构建完成后不再修改，可被多个 goroutine 并发读取。
// 交给传输层异步发送时直接传递 *Message，发送完成前由持有者保证其存活。
type Message struct {
	buf      []byte
	category Category
}

// Build 使用内置分类表打包消息，消息体长度上限为 MaxBodyLength
func Build(msg Serializable, typ uint16) (*Message, error) {
	return build(msg, typ, defaultCategoryTable, MaxBodyLength)
}

func build(msg Serializable, typ uint16, categories *CategoryTable, maxBody uint32) (*Message, error) {
	n := msg.Size()
	if n < 0 {
		return nil, errors.Wrapf(ErrLengthMismatch, "negative size %d", n)
	}
	if uint64(n) > uint64(maxBody) {
		return nil, errors.Wrapf(ErrFrameTooLarge, "body length %d exceeds %d", n, maxBody)
	}

	buf := make([]byte, HeaderBytes+n)
	putHeader(buf, Header{BodyLength: uint32(n), Type: typ})

	written, err := msg.MarshalTo(buf[HeaderBytes:])
	if err != nil {
		return nil, err
	}
	if written != n {
		return nil, errors.Wrapf(ErrLengthMismatch, "size reported %d, wrote %d", n, written)
	}

	return &Message{
		buf:      buf,
		category: categories.Categorize(typ),
	}, nil
}

// decode 校验一帧完整数据并接管其所有权
func decode(frame []byte, categories *CategoryTable, maxBody uint32) (*Message, error) {
	h, ok := ParseHeader(frame)
	if !ok {
		return nil, errors.Wrapf(ErrShortFrame, "got %d bytes, header needs %d", len(frame), HeaderBytes)
	}
	if h.BodyLength > maxBody {
		return nil, errors.Wrapf(ErrFrameTooLarge, "body length %d exceeds %d", h.BodyLength, maxBody)
	}
	switch size := h.FrameSize(); {
	case len(frame) < size:
		return nil, errors.Wrapf(ErrShortFrame, "got %d bytes, frame needs %d", len(frame), size)
	case len(frame) > size:
		return nil, errors.Wrapf(ErrLengthMismatch, "got %d bytes, frame declares %d", len(frame), size)
	}

	return &Message{
		buf:      frame,
		category: categories.Categorize(h.Type),
	}, nil
}

// Bytes 返回完整帧数据，可直接写入连接。调用方不得修改返回的切片。
func (m *Message) Bytes() []byte {
	return m.buf
}

// Len 返回帧总长度
func (m *Message) Len() int {
	return len(m.buf)
}

// Header 返回消息头
func (m *Message) Header() Header {
	h, _ := ParseHeader(m.buf)
	return h
}

// BodyLength 返回消息体长度
func (m *Message) BodyLength() uint32 {
	return m.Header().BodyLength
}

// Type 返回消息类型
func (m *Message) Type() uint16 {
	return m.Header().Type
}

// Payload 返回消息体，调用方不得修改返回的切片
func (m *Message) Payload() []byte {
	return m.buf[HeaderBytes:]
}

// Category 返回构建时确定的流量分类
func (m *Message) Category() Category {
	return m.category
}

// Equal 比较两帧数据是否逐字节相同，不比较分类
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	return bytes.Equal(m.buf, other.buf)
}
