package tcp

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialQueue_Order(t *testing.T) {
	d, err := newDispatcher(8, nil)
	require.NoError(t, err)
	defer d.release()

	var (
		q   serialQueue
		mu  sync.Mutex
		got []int
		wg  sync.WaitGroup
	)
	const n = 1000
	wg.Add(n)
	for i := 0; i < n; i++ {
		require.NoError(t, q.push(d, func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			wg.Done()
		}))
	}
	wg.Wait()

	require.Len(t, got, n)
	for i, v := range got {
		if !assert.Equal(t, i, v) {
			break
		}
	}
}

func TestDispatcher_Inline(t *testing.T) {
	d, err := newDispatcher(0, nil)
	require.NoError(t, err)
	assert.Nil(t, d.pool)

	ran := false
	require.NoError(t, d.submit(func() { ran = true }))
	assert.True(t, ran)
	d.release()
	d.reboot()
}

func TestDispatcher_Reboot(t *testing.T) {
	d, err := newDispatcher(2, nil)
	require.NoError(t, err)
	d.release()
	assert.Error(t, d.submit(func() {}))

	d.reboot()
	done := make(chan struct{})
	require.NoError(t, d.submit(func() { close(done) }))
	<-done
	d.release()
}

func TestSerialQueue_PanicDoesNotStall(t *testing.T) {
	panics := make(chan any, 1)
	d, err := newDispatcher(0, func(p any) { panics <- p })
	require.NoError(t, err)

	var q serialQueue
	require.NoError(t, q.push(d, func() { panic("boom") }))
	assert.Equal(t, "boom", <-panics)

	ran := false
	require.NoError(t, q.push(d, func() { ran = true }))
	assert.True(t, ran)
}
