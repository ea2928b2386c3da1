package http1

import (
	"strconv"

	"github.com/indigo-web/fileserver/config"
	"github.com/indigo-web/fileserver/http"
	"github.com/indigo-web/fileserver/http/status"
	"github.com/indigo-web/fileserver/internal/timer"
)

const crlf = "\r\n"

// Serializer renders responses into their wire representation. Every response is
// HTTP/1.1 with a Content-Length; neither chunked encoding nor compression is supported.
type Serializer struct {
	server    string
	keepAlive string
	buff      []byte
}

func NewSerializer(cfg *config.Config) *Serializer {
	keepAlive := "timeout=" + strconv.Itoa(int(cfg.NET.ReadTimeout.Seconds())) +
		", max=" + strconv.Itoa(cfg.HTTP.MaxRequestsPerConnection)

	return &Serializer{
		server:    cfg.HTTP.ServerName,
		keepAlive: keepAlive,
		buff:      make([]byte, 0, cfg.NET.ReadBufferSize),
	}
}

// Serialize returns the complete response. The returned slice is reused by the next call.
func (s *Serializer) Serialize(response *http.Response, directive http.Directive) []byte {
	code, contentType, headers, body := response.Fields()

	s.buff = append(s.buff[:0], "HTTP/1.1 "...)
	s.buff = strconv.AppendUint(s.buff, uint64(code), 10)
	s.buff = append(s.buff, ' ')
	s.buff = append(s.buff, status.Text(code)...)
	s.buff = append(s.buff, crlf...)

	s.header("Content-Type", contentType)
	s.header("Content-Length", strconv.Itoa(len(body)))

	for _, h := range headers {
		s.header(h.Key, h.Value)
	}

	s.header("Date", timer.Date())
	s.header("Server", s.server)
	s.header("Connection", directive.String())
	if directive == http.KeepAlive {
		s.header("Keep-Alive", s.keepAlive)
	}

	s.buff = append(s.buff, crlf...)
	s.buff = append(s.buff, body...)

	return s.buff
}

func (s *Serializer) header(key, value string) {
	s.buff = append(s.buff, key...)
	s.buff = append(s.buff, ": "...)
	s.buff = append(s.buff, value...)
	s.buff = append(s.buff, crlf...)
}
