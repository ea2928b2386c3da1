package pool

import (
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/indigo-web/fileserver/config"
	"github.com/indigo-web/fileserver/http/status"
	"github.com/indigo-web/fileserver/transport/dummy"
	"github.com/stretchr/testify/require"
)

func newConfig(workers, queue int) config.Pool {
	cfg := config.Default().Pool
	cfg.Workers = workers
	cfg.QueueSize = queue

	return cfg
}

// gate blocks handlers until opened.
type gate struct {
	ch   chan struct{}
	once sync.Once
}

func newGate() *gate {
	return &gate{ch: make(chan struct{})}
}

func (g *gate) wait() {
	<-g.ch
}

func (g *gate) open() {
	g.once.Do(func() { close(g.ch) })
}

func TestPool(t *testing.T) {
	t.Run("queueing below the threshold", func(t *testing.T) {
		var served atomic.Int64
		p := New(newConfig(10, 50), func(_ int, conn net.Conn) {
			time.Sleep(20 * time.Millisecond)
			served.Add(1)
			_ = conn.Close()
		})

		for range 11 {
			require.NoError(t, p.Submit(new(dummy.Conn)))
		}

		require.Eventually(t, func() bool {
			return served.Load() == 11
		}, 5*time.Second, 5*time.Millisecond)
		require.Zero(t, p.Rejected())

		p.Shutdown()
		p.Wait()
		require.EqualValues(t, 11, p.Served())
	})

	t.Run("reject on full queue", func(t *testing.T) {
		g := newGate()
		defer g.open()

		p := New(newConfig(1, 50), func(_ int, conn net.Conn) {
			g.wait()
			_ = conn.Close()
		})

		require.NoError(t, p.Submit(new(dummy.Conn)))
		require.Eventually(t, func() bool {
			return p.Status().Active == 1
		}, time.Second, time.Millisecond)

		for range 50 {
			require.NoError(t, p.Submit(new(dummy.Conn)))
		}

		require.Equal(t, Status{Active: 1, Total: 1, QueueDepth: 50}, p.Status())

		for range 3 {
			overflow := new(dummy.Conn)
			require.ErrorIs(t, p.Submit(overflow), status.ErrQueueSaturated)
			require.True(t, overflow.Closed())
			require.Empty(t, overflow.Data)
		}

		require.EqualValues(t, 3, p.Rejected())

		g.open()
		p.Shutdown()
		p.Wait()
	})

	t.Run("fifo", func(t *testing.T) {
		g := newGate()
		var (
			mu    sync.Mutex
			order []*dummy.Conn
		)

		p := New(newConfig(1, 50), func(_ int, conn net.Conn) {
			g.wait()
			mu.Lock()
			order = append(order, conn.(*dummy.Conn))
			mu.Unlock()
		})

		conns := []*dummy.Conn{new(dummy.Conn), new(dummy.Conn), new(dummy.Conn), new(dummy.Conn)}
		for _, conn := range conns {
			require.NoError(t, p.Submit(conn))
		}

		g.open()
		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(order) == len(conns)
		}, time.Second, time.Millisecond)
		require.Equal(t, conns, order)

		p.Shutdown()
		p.Wait()
	})

	t.Run("handler panic", func(t *testing.T) {
		var calls atomic.Int64
		p := New(newConfig(1, 50), func(int, net.Conn) {
			if calls.Add(1) == 1 {
				panic("boom")
			}
		})

		first, second := new(dummy.Conn), new(dummy.Conn)
		require.NoError(t, p.Submit(first))
		require.NoError(t, p.Submit(second))

		require.Eventually(t, func() bool {
			return calls.Load() == 2 && p.Status().Active == 0
		}, time.Second, time.Millisecond)
		require.True(t, first.Closed())

		p.Shutdown()
		p.Wait()
	})

	t.Run("cooperative shutdown", func(t *testing.T) {
		g := newGate()
		var finished atomic.Bool
		p := New(newConfig(1, 50), func(int, net.Conn) {
			g.wait()
			finished.Store(true)
		})

		require.NoError(t, p.Submit(new(dummy.Conn)))
		require.Eventually(t, func() bool {
			return p.Status().Active == 1
		}, time.Second, time.Millisecond)

		queued := new(dummy.Conn)
		require.NoError(t, p.Submit(queued))
		p.Shutdown()

		late := new(dummy.Conn)
		require.ErrorIs(t, p.Submit(late), status.ErrShutdown)
		require.True(t, late.Closed())

		waited := make(chan struct{})
		go func() {
			p.Wait()
			close(waited)
		}()

		select {
		case <-waited:
			require.Fail(t, "shutdown must not interrupt a busy worker")
		case <-time.After(50 * time.Millisecond):
		}

		g.open()
		select {
		case <-waited:
		case <-time.After(time.Second):
			require.Fail(t, "pool didn't shut down")
		}

		require.True(t, finished.Load())
		require.True(t, queued.Closed())
	})

	t.Run("close inflight", func(t *testing.T) {
		g := newGate()
		defer g.open()

		p := New(newConfig(2, 50), func(int, net.Conn) {
			g.wait()
		})

		conn := new(dummy.Conn)
		require.NoError(t, p.Submit(conn))
		require.Eventually(t, func() bool {
			return p.Status().Active == 1
		}, time.Second, time.Millisecond)

		p.CloseInflight()
		require.True(t, conn.Closed())
	})
}

func TestStatusBusy(t *testing.T) {
	require.False(t, Status{Active: 7, Total: 10}.Busy(0.7))
	require.True(t, Status{Active: 8, Total: 10}.Busy(0.7))
}
