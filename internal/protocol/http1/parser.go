package http1

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/indigo-web/fileserver/config"
	"github.com/indigo-web/fileserver/http"
	"github.com/indigo-web/fileserver/http/method"
	"github.com/indigo-web/fileserver/http/proto"
	"github.com/indigo-web/fileserver/http/status"
	"github.com/indigo-web/fileserver/internal/buffer"
)

type State uint8

const (
	// Pending means more data is required in order to complete the frame.
	Pending State = iota
	// Completed means the frame is complete and can be obtained via Parser.Request().
	Completed
	// Error means the frame can't be completed, the error is returned alongside.
	Error
)

var terminator = []byte("\r\n\r\n")

// Parser frames requests out of a raw byte stream. It's fed with whatever was read from
// the socket and reports when a complete request (headers and the whole body) is there.
// The Parser is not safe for concurrent use, every connection owns its own one.
type Parser struct {
	buff       buffer.Buffer
	maxHeaders int
	maxFrame   int
	// bodyOffset is where the body begins. It's zero until the headers are completed.
	bodyOffset    int
	contentLength int
	request       *http.Request
	completed     bool
}

func NewParser(cfg *config.Config) *Parser {
	return &Parser{
		// a single read may bring bytes of the following request in addition to the
		// biggest possible frame
		buff:       buffer.New(cfg.NET.ReadBufferSize, cfg.HTTP.MaxFrameSize+cfg.NET.ReadBufferSize),
		maxHeaders: cfg.HTTP.MaxHeadersSize,
		maxFrame:   cfg.HTTP.MaxFrameSize,
	}
}

// Parse appends data to the frame being accumulated. In case the frame is completed,
// everything after it is returned as extra.
func (p *Parser) Parse(data []byte) (state State, extra []byte, err error) {
	// the terminator may be split between two reads, so step back a bit
	scanFrom := max(p.buff.Len()-len(terminator)+1, 0)

	if !p.buff.Append(data) {
		return Error, nil, status.ErrRequestTooLarge
	}

	if p.bodyOffset == 0 {
		idx := bytes.Index(p.buff.Preview()[scanFrom:], terminator)
		if idx == -1 {
			if p.buff.Len() > p.maxHeaders {
				return Error, nil, status.ErrRequestTooLarge
			}

			return Pending, nil, nil
		}

		headersLen := scanFrom + idx
		if headersLen+len(terminator) > p.maxHeaders {
			return Error, nil, status.ErrRequestTooLarge
		}

		request, contentLength, err := parseHeaders(string(p.buff.Preview()[:headersLen]))
		if err != nil {
			return Error, nil, err
		}

		if contentLength > p.maxFrame-headersLen-len(terminator) {
			return Error, nil, status.ErrRequestTooLarge
		}

		p.request = request
		p.contentLength = contentLength
		p.bodyOffset = headersLen + len(terminator)
	}

	received := p.buff.Preview()[p.bodyOffset:]
	if len(received) < p.contentLength {
		return Pending, nil, nil
	}

	p.request.Body = bytes.Clone(received[:p.contentLength])
	p.completed = true

	return Completed, received[p.contentLength:], nil
}

// Request returns the completed frame. It's nil unless Parse returned Completed.
func (p *Parser) Request() *http.Request {
	if !p.completed {
		return nil
	}

	return p.request
}

// Buffered returns how many bytes of an incomplete frame were accumulated.
func (p *Parser) Buffered() int {
	return p.buff.Len()
}

// Reset prepares the parser for the next frame. Extra returned by the previous
// Parse call is invalidated.
func (p *Parser) Reset() {
	p.buff.Clear()
	p.bodyOffset = 0
	p.contentLength = 0
	p.request = nil
	p.completed = false
}

func parseHeaders(text string) (*http.Request, int, error) {
	lines := strings.Split(text, "\r\n")

	requestLine := strings.Fields(lines[0])
	if len(requestLine) != 3 {
		return nil, 0, status.ErrMalformedRequest
	}

	request := &http.Request{
		Method:    method.Parse(requestLine[0]),
		RawMethod: strings.ToUpper(requestLine[0]),
		Path:      requestLine[1],
		Protocol:  requestLine[2],
		Proto:     proto.FromString(requestLine[2]),
		Headers:   make(http.Headers, len(lines)-1),
	}

	for _, line := range lines[1:] {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		request.Headers[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	contentLength := 0
	if value, found := request.Headers["content-length"]; found {
		length, err := strconv.Atoi(value)
		if err != nil || length < 0 {
			return nil, 0, status.ErrMalformedRequest
		}

		contentLength = length
	}

	return request, contentLength, nil
}
