// pkg/framer/stream.go
// 基于 io.Reader / io.Writer 的消息帧读写，适用于 net.Conn
package framer

import (
	"bytes"
	"io"
	"net"

	"github.com/cockroachdb/errors"
)

const (
	defaultReadSize = 32 * 1024
	minReadSize     = 512

	// 小于 readSize/retainRatio 的帧复制出来，避免小消息长期占住整块读缓冲
	retainRatio = 4
)

// Reader 从字节流中逐帧读取消息
type Reader struct {
	r        io.Reader
	asm      *Assembler
	readSize int
	free     []byte
	err      error
}

// NewReader 创建 Reader，readSize <= 0 时使用默认值
func NewReader(r io.Reader, f Framer, readSize int) *Reader {
	if readSize <= 0 {
		readSize = defaultReadSize
	}
	return &Reader{
		r:        r,
		asm:      NewAssembler(f),
		readSize: readSize,
	}
}

// ReadMessage 读取下一帧。
// 流在帧中间结束时返回 io.ErrUnexpectedEOF，在帧边界结束时返回 io.EOF。
//
// 较大的帧直接引用读缓冲，持有该消息会使整块读缓冲无法回收；
// 较小的帧复制后返回，不引用读缓冲。
func (r *Reader) ReadMessage() (*Message, error) {
	for {
		msg, err := r.asm.Next()
		if err != nil {
			return nil, err
		}
		if msg != nil {
			if msg.Len() < r.readSize/retainRatio {
				msg.buf = bytes.Clone(msg.buf)
			}
			return msg, nil
		}
		if r.err != nil {
			if errors.Is(r.err, io.EOF) && r.asm.Buffered() > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, r.err
		}
		r.fill()
	}
}

// fill 读取一次数据。已读出的部分交给 Assembler，剩余空间留给下一次读取。
func (r *Reader) fill() {
	if len(r.free) < min(minReadSize, r.readSize) {
		r.free = make([]byte, r.readSize)
	}
	n, err := r.r.Read(r.free)
	if n > 0 {
		r.asm.Push(r.free[:n:n])
		r.free = r.free[n:]
	}
	if err != nil {
		r.err = err
	}
}

// Writer 将消息帧原样写入字节流
type Writer struct {
	w io.Writer
}

// NewWriter 创建 Writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteMessage 写入一帧
func (w *Writer) WriteMessage(m *Message) error {
	_, err := w.w.Write(m.Bytes())
	return err
}

// WriteMessages 聚合写入多帧，底层支持 writev 时只产生一次系统调用
func (w *Writer) WriteMessages(msgs ...*Message) error {
	bufs := make(net.Buffers, 0, len(msgs))
	for _, m := range msgs {
		bufs = append(bufs, m.Bytes())
	}
	_, err := bufs.WriteTo(w.w)
	return err
}
