package transport

import (
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/indigo-web/fileserver/http/status"
	"github.com/indigo-web/fileserver/internal/timer"
)

type Client interface {
	Read() ([]byte, error)
	Pushback([]byte)
	Write([]byte) error
	Conn() net.Conn
	Remote() net.Addr
	Close() error
}

type client struct {
	conn    net.Conn
	buff    []byte
	pending []byte
	timeout time.Duration
}

func NewClient(conn net.Conn, timeout time.Duration, buff []byte) Client {
	return &client{
		buff:    buff,
		conn:    conn,
		timeout: timeout,
	}
}

// Read reads data into the internal buffer and returns a piece of it back. Every read
// is limited by the idle timeout, exceeding it results in status.ErrIdleTimeout. A peer
// that closed the connection is reported as status.ErrPeerClosed.
func (c *client) Read() ([]byte, error) {
	if len(c.pending) > 0 {
		pending := c.pending
		c.pending = nil

		return pending, nil
	}

	if err := c.conn.SetReadDeadline(timer.Now().Add(c.timeout)); err != nil {
		return nil, err
	}

	n, err := c.conn.Read(c.buff)
	if n > 0 {
		return c.buff[:n], nil
	}

	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil, status.ErrPeerClosed
	case errors.Is(err, os.ErrDeadlineExceeded):
		return nil, status.ErrIdleTimeout
	default:
		return nil, err
	}
}

// Pushback preserves a chunk of data from previous read for the next read.
func (c *client) Pushback(b []byte) {
	c.pending = b
}

// Conn unwraps the underlying net.Conn.
func (c *client) Conn() net.Conn {
	return c.conn
}

// Write writes the whole data into the underlying connection, retrying on short writes.
// Either everything is written, or an error is returned.
func (c *client) Write(b []byte) error {
	if err := c.conn.SetWriteDeadline(timer.Now().Add(c.timeout)); err != nil {
		return err
	}

	for len(b) > 0 {
		n, err := c.conn.Write(b)
		if err != nil {
			return err
		}

		b = b[n:]
	}

	return nil
}

// Remote returns the remote address of the connection.
func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *client) Close() error {
	return c.conn.Close()
}
