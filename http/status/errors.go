package status

import "errors"

// HTTPError is a request-level failure that maps directly onto an error response.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// CodeOf extracts the status code carried by err. Errors not wrapping an HTTPError
// are reported as 500.
func CodeOf(err error) Code {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}

var (
	ErrMalformedRequest   = NewError(BadRequest, "Bad Request")
	ErrRequestTooLarge    = NewError(BadRequest, "Request too large")
	ErrMissingHost        = NewError(BadRequest, "Missing Host header")
	ErrHostMismatch       = NewError(Forbidden, "Host header mismatch")
	ErrUnsafePath         = NewError(Forbidden, "Unauthorized path access")
	ErrNotFound           = NewError(NotFound, "Not Found")
	ErrMethodNotAllowed   = NewError(MethodNotAllowed, "Only GET and POST methods are supported")
	ErrUnsupportedMedia   = NewError(UnsupportedMediaType, "Unsupported Media Type")
	ErrNotJSON            = NewError(UnsupportedMediaType, "Only application/json is supported for POST requests")
	ErrInvalidJSON        = NewError(BadRequest, "Invalid JSON data")
	ErrInternalServer     = NewError(InternalServerError, "Internal Server Error")
	ErrServiceUnavailable = NewError(ServiceUnavailable, "Service Unavailable")
)

// Connection-level conditions. None of them is ever rendered into a response.
var (
	ErrPeerClosed     = errors.New("peer closed the connection")
	ErrIdleTimeout    = errors.New("idle timeout exceeded")
	ErrQueueSaturated = errors.New("connection queue is saturated")
	ErrShutdown       = errors.New("server is shutting down")
)
