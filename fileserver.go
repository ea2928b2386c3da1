package fileserver

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/indigo-web/fileserver/config"
	"github.com/indigo-web/fileserver/internal/docroot"
	"github.com/indigo-web/fileserver/internal/logger"
	"github.com/indigo-web/fileserver/internal/pool"
	"github.com/indigo-web/fileserver/internal/server/http"
	"github.com/indigo-web/fileserver/internal/upload"
	"github.com/indigo-web/fileserver/router/static"
	"github.com/indigo-web/fileserver/transport"
)

type stopMode uint8

const (
	graceful stopMode = iota + 1
	immediate
)

// App is the file server: a TCP listener feeding accepted connections to a bounded
// pool of workers, each of them serving a connection till its end.
type App struct {
	cfg     *config.Config
	hooks   hooks
	tcp     transport.Transport
	stop    chan stopMode
	runtime atomic.Pointer[runtime]
}

// runtime is everything brought up by Serve.
type runtime struct {
	pool   *pool.Pool
	server *http.Server
}

// Stats is a snapshot of the server counters.
type Stats struct {
	// Requests is the number of responses written.
	Requests int64
	// Connections is the number of connections served till their end.
	Connections int64
	// Rejected is the number of connections closed unserved, e.g. because of the full queue.
	Rejected int64
	Pool     pool.Status
}

// New returns a new App instance. Nil config means config.Default().
func New(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}

	return &App{
		cfg:  cfg,
		tcp:  transport.NewTCP(),
		stop: make(chan stopMode, 1),
	}
}

// NotifyOnStart calls the callback at the moment the listener is bound and the workers
// are started.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment the server is down: the listener is
// closed and every worker has exited.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Addr returns the address the server is actually bound to. It's valid only after the
// start notification.
func (a *App) Addr() net.Addr {
	return a.tcp.Addr()
}

// Serve starts the server and blocks until it's stopped. The listening socket is closed
// on return in any case.
func (a *App) Serve() error {
	if err := bootstrap(a.cfg.Storage); err != nil {
		return err
	}

	docs, err := docroot.New(a.cfg.Storage.Root)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(a.cfg.Host, strconv.Itoa(int(a.cfg.Port)))
	if err = a.tcp.Bind(addr); err != nil {
		return fmt.Errorf("fileserver: bind %s: %w", addr, err)
	}

	// the configured port may be 0, so the router must know the real one
	port := uint16(a.tcp.Addr().(*net.TCPAddr).Port)
	r := static.New(a.cfg.Host, port, docs, upload.New(a.cfg.Storage.Uploads))
	rt := &runtime{server: http.NewServer(r, a.cfg)}
	rt.pool = pool.New(a.cfg.Pool, a.newConnHandler(rt))
	a.runtime.Store(rt)

	logger.Info("server started", "addr", a.tcp.Addr().String())
	logger.Info("worker pool started", "workers", rt.pool.Status().Total, "queue", a.cfg.Pool.QueueSize)
	logger.Info("serving files", "root", docs.Dir(), "uploads", a.cfg.Storage.Uploads)

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- a.tcp.Listen(a.cfg.NET, a.newAcceptCallback(rt))
	}()

	callIfNotNil(a.hooks.OnStart)

	var mode stopMode
	select {
	case mode = <-a.stop:
		a.tcp.Stop()
	case err = <-listenErr:
		logger.Error("accept loop failed", "err", err)
		a.tcp.Stop()
		mode = immediate
	}

	logger.Info("shutting down server", "graceful", mode == graceful)
	closeErr := a.tcp.Close()
	if err == nil {
		err = <-listenErr
	}

	rt.pool.Shutdown()
	if mode == immediate {
		rt.pool.CloseInflight()
	}

	rt.pool.Wait()
	callIfNotNil(a.hooks.OnStop)
	logger.Info("server stopped", "requests", rt.server.Requests())

	return errors.Join(err, closeErr)
}

// GracefulStop stops accepting new connections, but lets the workers finish those
// being served. Queued connections are closed.
//
// NOTE: the call isn't blocking. So by that, after the method returned, the server
// will be still working
func (a *App) GracefulStop() {
	a.signal(graceful)
}

// Stop stops the whole application immediately, closing the connections being served.
//
// NOTE: the call isn't blocking. So by that, after the method returned, the server
// will still be working
func (a *App) Stop() {
	a.signal(immediate)
}

func (a *App) signal(mode stopMode) {
	select {
	case a.stop <- mode:
	default:
	}
}

// Stats returns the counters. It's zero before the server started.
func (a *App) Stats() Stats {
	rt := a.runtime.Load()
	if rt == nil {
		return Stats{}
	}

	return Stats{
		Requests:    rt.server.Requests(),
		Connections: rt.pool.Served(),
		Rejected:    rt.pool.Rejected(),
		Pool:        rt.pool.Status(),
	}
}

func (a *App) newAcceptCallback(rt *runtime) func(net.Conn) {
	return func(conn net.Conn) {
		if err := rt.pool.Submit(conn); err != nil {
			return
		}

		if st := rt.pool.Status(); st.Busy(a.cfg.Pool.UtilizationWarn) {
			logger.Info("worker pool status", "active", st.Active, "total", st.Total, "queued", st.QueueDepth)
		}
	}
}

func (a *App) newConnHandler(rt *runtime) pool.Handler {
	// a worker serves a single connection at a time, so it can have its read buffer
	// for its whole lifetime
	buffers := make([][]byte, max(a.cfg.Pool.Workers, 1))
	for i := range buffers {
		buffers[i] = make([]byte, a.cfg.NET.ReadBufferSize)
	}

	return func(worker int, conn net.Conn) {
		client := transport.NewClient(conn, a.cfg.NET.ReadTimeout, buffers[worker-1])
		log := logger.With("worker", worker, "remote", conn.RemoteAddr().String())
		log.Info("connection accepted")
		rt.server.Run(client, log)
	}
}

func bootstrap(storage config.Storage) error {
	for _, dir := range []string{storage.Root, storage.Uploads} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("fileserver: create %s: %w", dir, err)
		}
	}

	return nil
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
