package http

import (
	"github.com/indigo-web/fileserver/http/method"
	"github.com/indigo-web/fileserver/http/proto"
)

// Headers maps lower-cased header keys onto their trimmed values. When a key is
// repeated, the last value wins.
type Headers map[string]string

// Request is a single completely received request frame. It's never modified after
// the parser returned it and doesn't share memory with the connection buffers.
type Request struct {
	// Method is an enum representing the request method. Unrecognized tokens are method.Unknown,
	// the raw token is kept in RawMethod.
	Method    method.Method
	RawMethod string
	// Path is the request target exactly as it came. It's neither decoded nor validated.
	Path string
	// Protocol is the raw protocol token, e.g. "HTTP/1.1".
	Protocol string
	// Proto is Protocol recognized.
	Proto   proto.Proto
	Headers Headers
	Body    []byte
}

// Header returns the value by a lower-cased key.
func (r *Request) Header(key string) (string, bool) {
	value, found := r.Headers[key]
	return value, found
}

// Directive tells whether the connection may carry further requests after the response.
type Directive uint8

const (
	Close Directive = iota
	KeepAlive
)

func (d Directive) String() string {
	if d == KeepAlive {
		return "keep-alive"
	}

	return "close"
}
