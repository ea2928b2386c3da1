package http

import (
	"errors"
	"fmt"
	"html"

	"github.com/indigo-web/fileserver/http/mime"
	"github.com/indigo-web/fileserver/http/status"
)

const errorTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>%[1]d %[2]s</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 50px; }
        h1 { color: #d32f2f; }
        p { color: #666; }
    </style>
</head>
<body>
    <h1>%[1]d %[2]s</h1>
    <p>%[3]s</p>
    <hr>
    <p><em>%[4]s</em></p>
</body>
</html>`

// ServerSignature is printed at the bottom of every error page.
const ServerSignature = "Multi-threaded HTTP Server"

// ErrorPage renders the error page for the code with an explanatory message. The message
// is HTML-escaped, so it's safe to include user input into it.
func ErrorPage(code status.Code, message string) *Response {
	body := fmt.Sprintf(
		errorTemplate, code, html.EscapeString(string(status.Text(code))),
		html.EscapeString(message), html.EscapeString(ServerSignature),
	)

	resp := NewResponse().
		Code(code).
		ContentType(mime.HTMLUTF8).
		String(body)

	if code == status.ServiceUnavailable {
		resp.Header("Retry-After", "30")
	}

	return resp
}

// Error renders the error page for err. Errors that aren't a status.HTTPError are
// rendered as 500 without disclosing their text.
func Error(err error) *Response {
	var httpErr status.HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = status.ErrInternalServer.(status.HTTPError)
	}

	return ErrorPage(httpErr.Code, httpErr.Message)
}
