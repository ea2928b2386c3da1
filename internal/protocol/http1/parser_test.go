package http1

import (
	"strconv"
	"strings"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/fileserver/config"
	"github.com/indigo-web/fileserver/http/method"
	"github.com/indigo-web/fileserver/http/proto"
	"github.com/indigo-web/fileserver/http/status"
	"github.com/stretchr/testify/require"
)

func disperse(data string, n int) (parts []string) {
	for len(data) > n {
		parts = append(parts, data[:n])
		data = data[n:]
	}

	return append(parts, data)
}

func feed(t *testing.T, p *Parser, parts ...string) (State, string, error) {
	for i, part := range parts {
		state, extra, err := p.Parse([]byte(part))
		if state != Pending || i == len(parts)-1 {
			return state, string(extra), err
		}
	}

	t.Fatal("nothing was fed")
	return Error, "", nil
}

func TestParser(t *testing.T) {
	t.Run("simple get", func(t *testing.T) {
		p := NewParser(config.Default())
		state, extra, err := feed(t, p, "GET /index.html HTTP/1.1\r\nHost: localhost:8080\r\n\r\n")
		require.NoError(t, err)
		require.Equal(t, Completed, state)
		require.Empty(t, extra)

		req := p.Request()
		require.NotNil(t, req)
		require.Equal(t, method.GET, req.Method)
		require.Equal(t, "/index.html", req.Path)
		require.Equal(t, "HTTP/1.1", req.Protocol)
		require.Equal(t, proto.HTTP11, req.Proto)
		require.Equal(t, "localhost:8080", req.Headers["host"])
		require.Empty(t, req.Body)
	})

	t.Run("headers normalization", func(t *testing.T) {
		p := NewParser(config.Default())
		state, _, err := feed(t, p,
			"get / HTTP/1.0\r\n"+
				"  X-Custom  :   spaced value  \r\n"+
				"Time: 12:30:00\r\n"+
				"garbage line without colon\r\n"+
				"Dup: first\r\n"+
				"dup: second\r\n\r\n",
		)
		require.NoError(t, err)
		require.Equal(t, Completed, state)

		req := p.Request()
		require.Equal(t, method.GET, req.Method)
		require.Equal(t, "GET", req.RawMethod)
		require.Equal(t, proto.HTTP10, req.Proto)
		require.Equal(t, "spaced value", req.Headers["x-custom"])
		require.Equal(t, "12:30:00", req.Headers["time"])
		require.Equal(t, "second", req.Headers["dup"])
		require.Len(t, req.Headers, 3)
	})

	t.Run("body", func(t *testing.T) {
		body := uniuri.NewLen(500)
		raw := "POST /upload HTTP/1.1\r\nContent-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body

		for _, n := range []int{1, 2, 3, 7, 64, len(raw)} {
			p := NewParser(config.Default())
			state, extra, err := feed(t, p, disperse(raw, n)...)
			require.NoError(t, err, n)
			require.Equal(t, Completed, state, n)
			require.Empty(t, extra)
			require.Equal(t, body, string(p.Request().Body))
		}
	})

	t.Run("incomplete body", func(t *testing.T) {
		p := NewParser(config.Default())
		state, _, err := feed(t, p, "POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\nhello")
		require.NoError(t, err)
		require.Equal(t, Pending, state)
		require.Nil(t, p.Request())
		require.NotZero(t, p.Buffered())
	})

	t.Run("extra bytes belong to the next frame", func(t *testing.T) {
		p := NewParser(config.Default())
		first := "POST / HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"
		second := "GET / HTTP/1.1\r\n\r\n"
		state, extra, err := feed(t, p, first+second)
		require.NoError(t, err)
		require.Equal(t, Completed, state)
		require.Equal(t, second, extra)

		req := p.Request()
		p.Reset()
		state, extra, err = feed(t, p, extra)
		require.NoError(t, err)
		require.Equal(t, Completed, state)
		require.Empty(t, extra)
		require.Equal(t, "hello", string(req.Body), "previous frame must stay intact")
		require.Equal(t, method.GET, p.Request().Method)
	})

	t.Run("malformed request line", func(t *testing.T) {
		for _, line := range []string{"GET /\r\n\r\n", "GET / HTTP/1.1 extra\r\n\r\n", "\r\n\r\n"} {
			p := NewParser(config.Default())
			state, _, err := feed(t, p, line)
			require.Equal(t, Error, state, line)
			require.ErrorIs(t, err, status.ErrMalformedRequest)
		}
	})

	t.Run("bad content-length", func(t *testing.T) {
		for _, value := range []string{"abc", "-1", "", "1.5"} {
			p := NewParser(config.Default())
			state, _, err := feed(t, p, "POST / HTTP/1.1\r\nContent-Length: "+value+"\r\n\r\n")
			require.Equal(t, Error, state, value)
			require.ErrorIs(t, err, status.ErrMalformedRequest)
		}
	})

	t.Run("headers too large", func(t *testing.T) {
		cfg := config.Default()
		p := NewParser(cfg)
		raw := "GET / HTTP/1.1\r\nX-Long: " + strings.Repeat("a", cfg.HTTP.MaxHeadersSize)
		state, _, err := feed(t, p, disperse(raw, cfg.NET.ReadBufferSize)...)
		require.Equal(t, Error, state)
		require.ErrorIs(t, err, status.ErrRequestTooLarge)
	})

	t.Run("declared body too large", func(t *testing.T) {
		cfg := config.Default()
		p := NewParser(cfg)
		state, _, err := feed(t, p, "POST / HTTP/1.1\r\nContent-Length: "+strconv.Itoa(cfg.HTTP.MaxFrameSize)+"\r\n\r\n")
		require.Equal(t, Error, state)
		require.ErrorIs(t, err, status.ErrRequestTooLarge)

		p = NewParser(cfg)
		state, _, err = feed(t, p, "POST / HTTP/1.1\r\nContent-Length: 9223372036854775807\r\n\r\n")
		require.Equal(t, Error, state)
		require.ErrorIs(t, err, status.ErrRequestTooLarge)
	})

	t.Run("reuse", func(t *testing.T) {
		p := NewParser(config.Default())

		for range 10 {
			value := uniuri.New()
			state, _, err := feed(t, p, "GET / HTTP/1.1\r\nX-Value: "+value+"\r\n\r\n")
			require.NoError(t, err)
			require.Equal(t, Completed, state)
			require.Equal(t, value, p.Request().Headers["x-value"])
			p.Reset()
			require.Zero(t, p.Buffered())
		}
	})
}
