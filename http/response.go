package http

import (
	"github.com/indigo-web/fileserver/http/mime"
	"github.com/indigo-web/fileserver/http/status"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

// Header is a single response header pair.
type Header struct {
	Key, Value string
}

// Response is an HTTP response ready to be serialized. Content-Length, Date, Server,
// Connection and Keep-Alive are managed by the serializer and must not be set manually.
type Response struct {
	code        status.Code
	contentType mime.MIME
	headers     []Header
	body        []byte
}

// NewResponse returns a new instance of the Response object with status code set to 200 OK
// and text/html content-type.
func NewResponse() *Response {
	return &Response{
		code:        status.OK,
		contentType: mime.HTMLUTF8,
	}
}

// Code sets the response code.
func (r *Response) Code(code status.Code) *Response {
	r.code = code
	return r
}

// ContentType sets a custom Content-Type header value.
func (r *Response) ContentType(value mime.MIME) *Response {
	r.contentType = value
	return r
}

// Header appends a header pair.
func (r *Response) Header(key, value string) *Response {
	r.headers = append(r.headers, Header{Key: key, Value: value})
	return r
}

// String sets the response's body to the passed string
func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

// Bytes sets the response's body to passed slice WITHOUT COPYING. Changing
// the passed slice later will affect the response by itself
func (r *Response) Bytes(body []byte) *Response {
	r.body = body
	return r
}

// JSON serializes the model with two-space indentation and sets it as the body along
// with the application/json content type.
func (r *Response) JSON(model any) (*Response, error) {
	data, err := json.ConfigCompatibleWithStandardLibrary.MarshalIndent(model, "", "  ")
	if err != nil {
		return r, err
	}

	return r.ContentType(mime.JSON).Bytes(data), nil
}

// Fields exposes the response to the serializer.
func (r *Response) Fields() (code status.Code, contentType mime.MIME, headers []Header, body []byte) {
	return r.code, r.contentType, r.headers, r.body
}
