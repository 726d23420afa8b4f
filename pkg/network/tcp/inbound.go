package tcp

import (
	"bytes"
	"fmt"

	"github.com/lk2023060901/overlay/pkg/framer"
)

// inboundBuffer gnet.Conn 中用于读取入站数据的部分
type inboundBuffer interface {
	InboundBuffered() int
	Peek(n int) ([]byte, error)
	Next(n int) ([]byte, error)
}

// readFrames 从入站缓冲区中取出所有已完整到达的消息帧。
// 不完整的帧保留在缓冲区中等待下一次 OnTraffic。
// gnet 会复用读缓冲区，取出的帧先拷贝再交给 Framer 接管。
func readFrames(in inboundBuffer, f framer.Framer, maxMessageSize int, emit func(*framer.Message)) error {
	for in.InboundBuffered() >= framer.HeaderBytes {
		head, err := in.Peek(framer.HeaderBytes)
		if err != nil {
			return err
		}
		h, ok := framer.ParseHeader(head)
		if !ok {
			return nil
		}
		size := h.FrameSize()
		if h.BodyLength > f.MaxBodyBytes() || (maxMessageSize > 0 && size > maxMessageSize) {
			return fmt.Errorf("%w: type %d body %d bytes", ErrMessageTooBig, h.Type, h.BodyLength)
		}
		if in.InboundBuffered() < size {
			return nil
		}

		frame, err := in.Next(size)
		if err != nil {
			return err
		}
		msg, err := f.Decode(bytes.Clone(frame))
		if err != nil {
			return err
		}
		emit(msg)
	}
	return nil
}
