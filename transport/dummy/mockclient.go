package dummy

import (
	"net"

	"github.com/indigo-web/fileserver/http/status"
	"github.com/indigo-web/fileserver/transport"
)

var _ transport.Client = new(Client)

// Client returns the data it was initialised with, one piece per read, unless set to
// loop. Once the data is exhausted, the final error is returned (status.ErrPeerClosed
// by default). It also tracks all the written data, making it thereby a universal mock
// suitable for most of the tests.
type Client struct {
	closed   bool
	loop     bool
	pointer  int
	tmp      []byte
	written  []byte
	data     [][]byte
	final    error
	writeErr error
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data:  data,
		final: status.ErrPeerClosed,
	}
}

func (c *Client) Read() (data []byte, err error) {
	if c.closed {
		return nil, net.ErrClosed
	}

	if len(c.tmp) > 0 {
		data, c.tmp = c.tmp, nil

		return data, nil
	}

	if c.pointer >= len(c.data) {
		if !c.loop || len(c.data) == 0 {
			return nil, c.final
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Pushback(takeback []byte) {
	c.tmp = takeback
}

func (c *Client) Write(p []byte) error {
	if c.writeErr != nil {
		return c.writeErr
	}

	c.written = append(c.written, p...)
	return nil
}

func (c *Client) Conn() net.Conn {
	return new(Conn)
}

func (*Client) Remote() net.Addr {
	return nil
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}

// LoopReads makes the client start over once the data is exhausted.
func (c *Client) LoopReads() *Client {
	c.loop = true
	return c
}

// Finally sets the error returned by reads after the data is exhausted.
func (c *Client) Finally(err error) *Client {
	c.final = err
	return c
}

// FailWrites makes every write fail with err.
func (c *Client) FailWrites(err error) *Client {
	c.writeErr = err
	return c
}

func (c *Client) Written() string {
	return string(c.written)
}

func (c *Client) Closed() bool {
	return c.closed
}
