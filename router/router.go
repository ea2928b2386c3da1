package router

import (
	"github.com/indigo-web/fileserver/http"
)

// Router turns a complete request into a response. Along with it, the router decides
// whether the connection may be kept for the next request.
type Router interface {
	OnRequest(request *http.Request) (*http.Response, http.Directive)
	// OnError renders a response for an error that happened before the request could be
	// routed, e.g. a malformed frame. The request may be nil in that case.
	OnError(request *http.Request, err error) *http.Response
}
