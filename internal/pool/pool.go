package pool

import (
	"net"
	"sync"
	"time"

	"github.com/indigo-web/fileserver/config"
	"github.com/indigo-web/fileserver/http/status"
	"github.com/indigo-web/fileserver/internal/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

// Handler serves a single connection to its very end. The connection belongs to the
// handler exclusively, no one else touches it while the handler runs.
type Handler func(worker int, conn net.Conn)

type pending struct {
	conn    net.Conn
	arrival time.Time
}

// Status is a snapshot of the pool load.
type Status struct {
	Active, Total, QueueDepth int
}

// Busy reports whether the share of active workers exceeds the threshold.
func (s Status) Busy(threshold float64) bool {
	return float64(s.Active) > float64(s.Total)*threshold
}

// Pool is a fixed set of long-lived workers draining a bounded FIFO queue of accepted
// connections. When the queue is full, newly arriving connections are shed: closed
// without a single byte being read or written. Connections already queued or being
// served are never dropped.
type Pool struct {
	mu       sync.Mutex
	active   int
	shutdown bool
	queue    chan pending
	done     chan struct{}
	workers  int
	handler  Handler
	wg       sync.WaitGroup
	inflight *xsync.MapOf[net.Conn, struct{}]
	served   *xsync.Counter
	rejected *xsync.Counter
}

// New starts the workers immediately.
func New(cfg config.Pool, handler Handler) *Pool {
	workers := max(cfg.Workers, 1)

	p := &Pool{
		queue:    make(chan pending, cfg.QueueSize),
		done:     make(chan struct{}),
		workers:  workers,
		handler:  handler,
		inflight: xsync.NewMapOfPresized[net.Conn, struct{}](workers),
		served:   xsync.NewCounter(),
		rejected: xsync.NewCounter(),
	}

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i + 1)
	}

	return p
}

// Submit hands the connection over to the pool. Whatever is returned, the caller must
// not touch the connection afterwards. If the queue is full or the pool is shutting down,
// the connection is closed right away and an error is returned.
func (p *Pool) Submit(conn net.Conn) error {
	p.mu.Lock()

	if p.shutdown {
		p.mu.Unlock()
		p.reject(conn)

		return status.ErrShutdown
	}

	depth := len(p.queue)
	if depth >= cap(p.queue) {
		p.mu.Unlock()
		p.reject(conn)
		logger.Warn("connection queue full, rejecting connection", "remote", conn.RemoteAddr())

		return status.ErrQueueSaturated
	}

	// can't block: the queue is checked to have a free seat and only Submit fills it,
	// always under the lock
	p.queue <- pending{conn: conn, arrival: time.Now()}
	p.mu.Unlock()

	if depth > 0 {
		logger.Warn("pool saturated, queuing connection", "queue_size", depth)
	}

	return nil
}

func (p *Pool) reject(conn net.Conn) {
	_ = conn.Close()
	p.rejected.Inc()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			return
		case pc := <-p.queue:
			select {
			case <-p.done:
				// the shutdown has already begun, queued connections aren't served anymore
				p.reject(pc.conn)
				return
			default:
			}

			p.serve(id, pc)
		}
	}
}

func (p *Pool) serve(id int, pc pending) {
	p.mu.Lock()
	p.active++
	p.mu.Unlock()
	p.inflight.Store(pc.conn, struct{}{})

	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker recovered from a handler panic", "worker", id, "panic", r)
			_ = pc.conn.Close()
		}

		p.inflight.Delete(pc.conn)
		p.served.Inc()

		p.mu.Lock()
		p.active--
		p.mu.Unlock()
	}()

	logger.Debug("connection dequeued, now serving", "worker", id, "waited", time.Since(pc.arrival))
	p.handler(id, pc.conn)
}

// Status returns the current load.
func (p *Pool) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Status{
		Active:     p.active,
		Total:      p.workers,
		QueueDepth: len(p.queue),
	}
}

// Served returns how many connections were served to their end.
func (p *Pool) Served() int64 {
	return p.served.Value()
}

// Rejected returns how many connections were shed without being served.
func (p *Pool) Rejected() int64 {
	return p.rejected.Value()
}

// Shutdown stops accepting new connections and tells idle workers to exit. Busy workers
// finish their current connections first. The call doesn't block, use Wait for this.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shutdown {
		return
	}

	p.shutdown = true
	close(p.done)
}

// Wait blocks until every worker exited. Connections left in the queue are closed unserved.
func (p *Pool) Wait() {
	p.wg.Wait()

	for {
		select {
		case pc := <-p.queue:
			p.reject(pc.conn)
		default:
			return
		}
	}
}

// CloseInflight closes every connection being served at the moment. Handlers observe
// it as a failed read or write and finish.
func (p *Pool) CloseInflight() {
	p.inflight.Range(func(conn net.Conn, _ struct{}) bool {
		_ = conn.Close()
		return true
	})
}
