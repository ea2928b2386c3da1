package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/indigo-web/fileserver/config"
	"github.com/indigo-web/fileserver/http"
	"github.com/indigo-web/fileserver/http/proto"
	"github.com/indigo-web/fileserver/http/status"
	"github.com/indigo-web/fileserver/internal/protocol/http1"
	"github.com/indigo-web/fileserver/router"
	"github.com/indigo-web/fileserver/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// Server drives connections from their first byte till closing. A single Server
// is shared by all the workers, every connection gets its own parser and serializer.
type Server struct {
	router   router.Router
	cfg      *config.Config
	requests *xsync.Counter
}

func NewServer(r router.Router, cfg *config.Config) *Server {
	return &Server{
		router:   r,
		cfg:      cfg,
		requests: xsync.NewCounter(),
	}
}

// Requests returns how many responses were written over all connections.
func (s *Server) Requests() int64 {
	return s.requests.Value()
}

// conn is the state of a single connection.
type conn struct {
	client     transport.Client
	log        *slog.Logger
	parser     *http1.Parser
	serializer *http1.Serializer
	served     int
	request    *http.Request
	response   *http.Response
	directive  http.Directive
}

// Run serves the client until either side wants the connection closed. The client
// is always closed on return.
func (s *Server) Run(client transport.Client, log *slog.Logger) {
	c := &conn{
		client:     client,
		log:        log,
		parser:     http1.NewParser(s.cfg),
		serializer: http1.NewSerializer(s.cfg),
	}

	defer func() {
		_ = client.Close()
		log.Info("connection closed", "requests", c.served)
	}()

	for state := eAwaitFrame; state != eClose; {
		switch state {
		case eAwaitFrame:
			state = s.awaitFrame(c)
		case eDispatch:
			state = s.dispatch(c)
		case eRespond:
			state = s.respond(c)
		default:
			panic(fmt.Sprintf("BUG: unexpected connection state %s", state))
		}
	}
}

func (s *Server) awaitFrame(c *conn) connState {
	req, err := readFrame(c.client, c.parser)
	switch {
	case err == nil:
		c.request = req
		return eDispatch
	case errors.Is(err, status.ErrIdleTimeout):
		c.log.Info("idle timeout, closing connection")
	case errors.Is(err, status.ErrPeerClosed):
		if c.parser.Buffered() > 0 {
			c.log.Debug("peer closed mid-frame", "buffered", c.parser.Buffered())
		}
	case errors.As(err, new(status.HTTPError)):
		c.log.Warn("bad request frame", "err", err)
		c.response, c.directive = s.router.OnError(nil, err), http.Close
		return eRespond
	default:
		c.log.Error("reading request", "err", err)
	}

	return eClose
}

// readFrame reads until the parser completes a frame. The bytes beyond the frame are
// pushed back to the client to be read again as the beginning of the next one.
func readFrame(client transport.Client, parser *http1.Parser) (*http.Request, error) {
	for {
		data, err := client.Read()
		if err != nil {
			return nil, err
		}

		state, extra, err := parser.Parse(data)
		switch state {
		case http1.Pending:
		case http1.Completed:
			req := parser.Request()
			if len(extra) > 0 {
				client.Pushback(bytes.Clone(extra))
			}

			parser.Reset()
			return req, nil
		case http1.Error:
			return nil, err
		}
	}
}

func (s *Server) dispatch(c *conn) (next connState) {
	req := c.request
	c.log.Info("request", "method", req.RawMethod, "path", req.Path, "proto", req.Protocol)

	defer func() {
		if r := recover(); r != nil {
			c.log.Error("panic while routing the request", "panic", r)
			c.response, c.directive = s.router.OnError(req, status.ErrInternalServer), http.Close
			next = eRespond
		}
	}()

	c.response, c.directive = s.router.OnRequest(req)
	if c.response == nil {
		c.log.Error("router returned no response", "path", req.Path)
		c.response, c.directive = s.router.OnError(req, status.ErrInternalServer), http.Close
	}

	return eRespond
}

func (s *Server) respond(c *conn) connState {
	c.served++
	keepAlive := c.directive == http.KeepAlive &&
		c.request != nil && c.request.Proto != proto.HTTP10 &&
		c.served < s.cfg.HTTP.MaxRequestsPerConnection

	directive := http.Close
	if keepAlive {
		directive = http.KeepAlive
	}

	code, _, _, body := c.response.Fields()
	if err := c.client.Write(c.serializer.Serialize(c.response, directive)); err != nil {
		c.log.Warn("writing response", "err", err)
		return eClose
	}

	s.requests.Inc()
	c.log.Info("response", "code", code, "bytes", len(body), "connection", directive)

	c.request, c.response = nil, nil
	if !keepAlive {
		return eClose
	}

	return eAwaitFrame
}
