package tcp

import (
	"sync"

	"github.com/panjf2000/ants/v2"
)

// dispatcher 在协程池上执行会话回调，pool 为 nil 时直接执行
type dispatcher struct {
	pool    *ants.Pool
	onPanic func(any)
}

func newDispatcher(size int, onPanic func(any)) (*dispatcher, error) {
	if size <= 0 {
		return &dispatcher{onPanic: onPanic}, nil
	}
	pool, err := ants.NewPool(size, ants.WithPanicHandler(onPanic))
	if err != nil {
		return nil, err
	}
	return &dispatcher{pool: pool, onPanic: onPanic}, nil
}

// run 执行单个任务，panic 交给 onPanic 处理
func (d *dispatcher) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			if d.onPanic == nil {
				panic(r)
			}
			d.onPanic(r)
		}
	}()
	task()
}

func (d *dispatcher) submit(task func()) error {
	if d.pool == nil {
		task()
		return nil
	}
	return d.pool.Submit(task)
}

// reboot 在 release 之后重新启用协程池
func (d *dispatcher) reboot() {
	if d.pool != nil && d.pool.IsClosed() {
		d.pool.Reboot()
	}
}

func (d *dispatcher) release() {
	if d.pool != nil {
		d.pool.Release()
	}
}

// serialQueue 保证同一会话的回调按入队顺序串行执行
type serialQueue struct {
	mu      sync.Mutex
	pending []func()
	running bool
}

// push 入队并在空闲时向 dispatcher 提交排空任务
func (q *serialQueue) push(d *dispatcher, task func()) error {
	q.mu.Lock()
	q.pending = append(q.pending, task)
	if q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = true
	q.mu.Unlock()

	if err := d.submit(func() { q.drain(d) }); err != nil {
		q.mu.Lock()
		q.running = false
		q.pending = q.pending[:0]
		q.mu.Unlock()
		return err
	}
	return nil
}

func (q *serialQueue) drain(d *dispatcher) {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		for _, task := range batch {
			d.run(task)
		}
	}
}
