package transport

import (
	"errors"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/indigo-web/fileserver/config"
	"github.com/indigo-web/fileserver/internal/logger"
	"github.com/indigo-web/fileserver/internal/timer"
)

const maxAcceptBackoff = time.Second

var _ Transport = new(TCP)

type TCP struct {
	l    *net.TCPListener
	stop *atomic.Bool
}

func NewTCP() *TCP {
	return &TCP{
		stop: new(atomic.Bool),
	}
}

func (t *TCP) Bind(addr string) error {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return err
	}

	t.l, err = net.ListenTCP("tcp", tcpaddr)
	return err
}

// Addr returns the bound address. It's valid only after a successful Bind.
func (t *TCP) Addr() net.Addr {
	return t.l.Addr()
}

// Listen runs the accept loop until Stop is called. The callback is called synchronously,
// so it must not block. A failed Accept never stops the loop, it's logged and retried
// after a short backoff instead.
func (t *TCP) Listen(cfg config.NET, cb func(conn net.Conn)) error {
	var backoff time.Duration

	for !t.stop.Load() {
		err := t.l.SetDeadline(timer.Now().Add(cfg.AcceptLoopInterruptPeriod))
		if err != nil {
			if t.stop.Load() {
				return nil
			}

			return err
		}

		conn, err := t.l.Accept()
		if err != nil {
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded):
				continue
			case errors.Is(err, net.ErrClosed):
				if t.stop.Load() {
					return nil
				}

				return err
			}

			backoff = min(max(2*backoff, 5*time.Millisecond), maxAcceptBackoff)
			logger.Warn("error accepting connection", "err", err, "retry_in", backoff)
			time.Sleep(backoff)
			continue
		}

		backoff = 0
		cb(conn)
	}

	return nil
}

func (t *TCP) Stop() {
	t.stop.Store(true)
}

func (t *TCP) Close() error {
	return t.l.Close()
}
