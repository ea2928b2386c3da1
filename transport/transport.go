package transport

import (
	"net"

	"github.com/indigo-web/fileserver/config"
)

// Transport is a listener producing raw connections. Every accepted connection is
// handed over to the callback and is never touched by the transport afterwards.
type Transport interface {
	Bind(addr string) error
	Addr() net.Addr
	Listen(cfg config.NET, cb func(conn net.Conn)) error
	Stop()
	Close() error
}
