// pkg/framer/buffers.go
// 多段缓冲区（scatter/gather）上的消息头解析
package framer

import (
	"iter"
	"slices"
)

// BufferSequence 按逻辑顺序排列的只读缓冲区序列。
// 各段在内存中不必连续，Chunks 必须可以重复遍历。
type BufferSequence interface {
	Chunks() iter.Seq[[]byte]
}

// Buffers 由多个切片组成的缓冲区序列
type Buffers [][]byte

// Chunks 实现 BufferSequence
func (b Buffers) Chunks() iter.Seq[[]byte] {
	return slices.Values(b)
}

// Len 返回所有分段的总字节数
func (b Buffers) Len() int {
	n := 0
	for _, chunk := range b {
		n += len(chunk)
	}
	return n
}

// SeqFunc 将任意分段迭代器适配为 BufferSequence
type SeqFunc iter.Seq[[]byte]

// Chunks 实现 BufferSequence
func (f SeqFunc) Chunks() iter.Seq[[]byte] {
	return iter.Seq[[]byte](f)
}

// HeaderOf 从缓冲区序列中解析消息头，消息头可以跨越任意分段边界。
// 只读取前 HeaderBytes 个逻辑字节，读够即停止遍历。
func HeaderOf(s BufferSequence) (Header, bool) {
	if s == nil {
		return Header{}, false
	}

	var hdr [HeaderBytes]byte
	n := 0
	for chunk := range s.Chunks() {
		n += copy(hdr[n:], chunk)
		if n == HeaderBytes {
			break
		}
	}
	if n < HeaderBytes {
		return Header{}, false
	}
	return ParseHeader(hdr[:])
}

// BodyLengthOf 从缓冲区序列中读取消息体长度
func BodyLengthOf(s BufferSequence) (uint32, bool) {
	h, ok := HeaderOf(s)
	return h.BodyLength, ok
}

// TypeTagOf 从缓冲区序列中读取消息类型
func TypeTagOf(s BufferSequence) (uint16, bool) {
	h, ok := HeaderOf(s)
	return h.Type, ok
}
