// pkg/framer/assembler.go
// Assembler 将流式传输收到的零散数据块重组为完整消息帧
package framer

import "github.com/cockroachdb/errors"

// Assembler 增量重组器。
//
// 收到的数据块按顺序 Push 进来，不做拼接；消息头直接在分段序列上解析，
// 只有一帧跨越多个数据块时才会把这一帧复制成连续内存。
// Assembler 不是并发安全的，一个连接对应一个实例。
type Assembler struct {
	framer   Framer
	chunks   Buffers
	buffered int
}

// NewAssembler 创建重组器
func NewAssembler(f Framer) *Assembler {
	return &Assembler{framer: f}
}

// Push 追加一块数据并接管其所有权，调用后不得再修改 chunk
func (a *Assembler) Push(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	a.chunks = append(a.chunks, chunk)
	a.buffered += len(chunk)
}

// Buffered 返回尚未取出的字节数
func (a *Assembler) Buffered() int {
	return a.buffered
}

// Header 返回下一帧的消息头，数据不足 HeaderBytes 时 ok 为 false
func (a *Assembler) Header() (Header, bool) {
	return HeaderOf(a.chunks)
}

// Next 取出下一帧完整消息。数据不足时返回 (nil, nil)，继续 Push 后重试即可。
// 消息体超限时返回 ErrFrameTooLarge，此时流已无法继续解析，应关闭连接。
func (a *Assembler) Next() (*Message, error) {
	h, ok := HeaderOf(a.chunks)
	if !ok {
		return nil, nil
	}
	if h.BodyLength > a.framer.MaxBodyBytes() {
		return nil, errors.Wrapf(ErrFrameTooLarge, "body length %d exceeds %d", h.BodyLength, a.framer.MaxBodyBytes())
	}

	size := h.FrameSize()
	if a.buffered < size {
		return nil, nil
	}
	return a.framer.Decode(a.take(size))
}

// Reset 丢弃所有缓存数据
func (a *Assembler) Reset() {
	clear(a.chunks)
	a.chunks = a.chunks[:0]
	a.buffered = 0
}

// take 从头部取出 n 字节，调用前需保证 buffered >= n
func (a *Assembler) take(n int) []byte {
	a.buffered -= n

	// 首块已包含整帧，直接切出，限制容量防止后续 append 越界
	if first := a.chunks[0]; len(first) >= n {
		frame := first[:n:n]
		a.advance(n)
		return frame
	}

	frame := make([]byte, 0, n)
	for len(frame) < n {
		first := a.chunks[0]
		need := min(n-len(frame), len(first))
		frame = append(frame, first[:need]...)
		a.advance(need)
	}
	return frame
}

// advance 从首块丢弃 n 字节，首块耗尽时移除
func (a *Assembler) advance(n int) {
	a.chunks[0] = a.chunks[0][n:]
	if len(a.chunks[0]) == 0 {
		a.chunks[0] = nil
		a.chunks = a.chunks[1:]
	}
}
