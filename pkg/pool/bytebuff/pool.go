// pkg/pool/bytebuff/pool.go
// 基于 valyala/bytebufferpool 的缓冲区池，附带命中统计
package bytebuff

import (
	"sync/atomic"

	"github.com/valyala/bytebufferpool"
)

// MaxRetainSize 超过此容量的 buffer 不放回池中，防止偶发的大消息长期占用内存
const MaxRetainSize = 1 << 20 // 1MB

// Buffer 池化的字节缓冲区
type Buffer = bytebufferpool.ByteBuffer

// Pool 缓冲区池
type Pool struct {
	pool bytebufferpool.Pool

	gets     atomic.Uint64
	puts     atomic.Uint64
	discards atomic.Uint64
}

// Stats 池统计信息
type Stats struct {
	Gets     uint64
	Puts     uint64
	Discards uint64
}

var defaultPool = NewPool()

// NewPool 创建缓冲区池
func NewPool() *Pool {
	return &Pool{}
}

// Get 获取一个已清空的 Buffer
func (p *Pool) Get() *Buffer {
	p.gets.Add(1)
	return p.pool.Get()
}

// Put 归还 Buffer，调用后不得再使用 buf 及其 B 切片
func (p *Pool) Put(buf *Buffer) {
	if buf == nil {
		return
	}
	if cap(buf.B) > MaxRetainSize {
		p.discards.Add(1)
		return
	}
	p.puts.Add(1)
	p.pool.Put(buf)
}

// Stats 返回统计信息
func (p *Pool) Stats() Stats {
	return Stats{
		Gets:     p.gets.Load(),
		Puts:     p.puts.Load(),
		Discards: p.discards.Load(),
	}
}

// Get 从默认池获取 Buffer
func Get() *Buffer {
	return defaultPool.Get()
}

// Put 归还 Buffer 到默认池
func Put(buf *Buffer) {
	defaultPool.Put(buf)
}

// DefaultStats 返回默认池的统计信息
func DefaultStats() Stats {
	return defaultPool.Stats()
}
