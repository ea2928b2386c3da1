package simple

import (
	"github.com/indigo-web/fileserver/http"
	"github.com/indigo-web/fileserver/router"
)

type (
	Handler      func(*http.Request) (*http.Response, http.Directive)
	ErrorHandler func(*http.Request, error) *http.Response
)

var _ router.Router = new(Router)

// Router delegates everything to the passed functions. If no error handler is set,
// errors are rendered as the default error page.
type Router struct {
	handler    Handler
	errHandler ErrorHandler
}

func New(handler Handler, errHandler ErrorHandler) *Router {
	if errHandler == nil {
		errHandler = func(_ *http.Request, err error) *http.Response {
			return http.Error(err)
		}
	}

	return &Router{
		handler:    handler,
		errHandler: errHandler,
	}
}

func (r *Router) OnRequest(request *http.Request) (*http.Response, http.Directive) {
	return r.handler(request)
}

func (r *Router) OnError(request *http.Request, err error) *http.Response {
	return r.errHandler(request, err)
}
