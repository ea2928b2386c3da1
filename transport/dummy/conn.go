package dummy

import (
	"io"
	"net"
	"time"
)

var _ net.Conn = new(Conn)

// Conn is an in-memory net.Conn. Reads consume Input until it's exhausted, writes are
// collected into Data. Writes can be limited to simulate short writes of a real socket.
type Conn struct {
	Input    []byte
	Data     []byte
	maxWrite int
	closed   bool
}

func (c *Conn) Read(b []byte) (n int, err error) {
	if len(c.Input) == 0 {
		return 0, io.EOF
	}

	n = copy(b, c.Input)
	c.Input = c.Input[n:]

	return n, nil
}

func (c *Conn) Write(b []byte) (n int, err error) {
	if c.closed {
		return 0, net.ErrClosed
	}

	if c.maxWrite > 0 && len(b) > c.maxWrite {
		b = b[:c.maxWrite]
	}

	c.Data = append(c.Data, b...)

	return len(b), nil
}

// ShortWrites limits every Write call to n bytes at most.
func (c *Conn) ShortWrites(n int) *Conn {
	c.maxWrite = n
	return c
}

func (c *Conn) Close() error {
	c.closed = true
	return nil
}

func (c *Conn) Closed() bool {
	return c.closed
}

func (c *Conn) LocalAddr() net.Addr {
	return nil
}

func (c *Conn) RemoteAddr() net.Addr {
	return nil
}

func (c *Conn) SetDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetReadDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return nil
}
