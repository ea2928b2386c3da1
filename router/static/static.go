// Package static implements the file-serving router: GET serves files from the document
// root, POST stores JSON documents in the uploads directory.
package static

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/indigo-web/fileserver/http"
	"github.com/indigo-web/fileserver/http/method"
	"github.com/indigo-web/fileserver/http/mime"
	"github.com/indigo-web/fileserver/http/proto"
	"github.com/indigo-web/fileserver/http/status"
	"github.com/indigo-web/fileserver/internal/docroot"
	"github.com/indigo-web/fileserver/internal/logger"
	"github.com/indigo-web/fileserver/router"
	"github.com/indigo-web/utils/strcomp"
	json "github.com/json-iterator/go"
)

var _ router.Router = new(Router)

// unsafePatterns are rejected wherever they appear in the decoded path. The check is
// merely a cheap filter, containment within the root is verified afterward anyway.
var unsafePatterns = []string{"..", "./", `\`, "//", `\\`}

// documents keeps numbers as json.Number, so they are stored back exactly as they came.
var documents = json.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Uploads persists JSON documents, returning the public path of the stored one.
type Uploads interface {
	PersistJSON(value any) (string, error)
}

type created struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Filepath string `json:"filepath"`
}

type Router struct {
	hosts   map[string]struct{}
	docs    *docroot.Root
	uploads Uploads
	log     *slog.Logger
}

// New returns a router accepting requests addressed to the host and port only.
func New(host string, port uint16, docs *docroot.Root, uploads Uploads) *Router {
	p := strconv.Itoa(int(port))
	hosts := make(map[string]struct{}, 6)
	for _, h := range []string{host + ":" + p, "localhost:" + p, "127.0.0.1:" + p, host, "localhost", "127.0.0.1"} {
		hosts[h] = struct{}{}
	}

	return &Router{
		hosts:   hosts,
		docs:    docs,
		uploads: uploads,
		log:     logger.With("component", "router"),
	}
}

// OnRequest validates the request and dispatches it by method. Requests failing the
// validation are always answered with the connection closed afterward.
func (r *Router) OnRequest(req *http.Request) (*http.Response, http.Directive) {
	path, err := r.validate(req)
	if err != nil {
		return http.Error(err), http.Close
	}

	directive := Directive(req)

	var resp *http.Response
	switch req.Method {
	case method.GET:
		resp, err = r.get(path)
	case method.POST:
		resp, err = r.post(req)
	default:
		err = status.ErrMethodNotAllowed
	}

	if err != nil {
		return http.Error(err), directive
	}

	return resp, directive
}

// OnError renders the error page.
func (r *Router) OnError(_ *http.Request, err error) *http.Response {
	return http.Error(err)
}

// Directive resolves whether the client wants the connection kept. An explicit
// Connection header wins, otherwise HTTP/1.1 defaults to keep-alive.
func Directive(req *http.Request) http.Directive {
	if value, ok := req.Header("connection"); ok {
		switch {
		case strcomp.EqualFold(value, "close"):
			return http.Close
		case strcomp.EqualFold(value, "keep-alive"):
			return http.KeepAlive
		}
	}

	if req.Proto == proto.HTTP11 {
		return http.KeepAlive
	}

	return http.Close
}

// validate returns the decoded path, stripped of the query, if the request passed.
func (r *Router) validate(req *http.Request) (string, error) {
	host, ok := req.Header("host")
	if !ok || len(host) == 0 {
		r.log.Warn("security violation: missing Host header")
		return "", status.ErrMissingHost
	}

	if _, ok = r.hosts[host]; !ok {
		r.log.Warn("security violation: host mismatch", "host", host)
		return "", status.ErrHostMismatch
	}

	path, _, _ := strings.Cut(req.Path, "?")
	decoded, err := url.PathUnescape(path)
	if err != nil || !r.isSafe(decoded) {
		r.log.Warn("security violation: path traversal attempt", "path", req.Path)
		return "", status.ErrUnsafePath
	}

	return decoded, nil
}

func (r *Router) isSafe(path string) bool {
	for _, pattern := range unsafePatterns {
		if strings.Contains(path, pattern) {
			return false
		}
	}

	return r.docs.Contains(path)
}

func (r *Router) get(path string) (*http.Response, error) {
	if path == "/" || len(path) == 0 {
		path = "/index.html"
	}

	info, err := r.docs.Resolve(path)
	if err != nil {
		r.log.Error("resolving file", "path", path, "err", err)
		return nil, status.NewError(status.InternalServerError, "Error reading file")
	}

	if !info.Exists || !info.Regular {
		return nil, status.NewError(status.NotFound, fmt.Sprintf("The requested resource %s was not found", path))
	}

	contentType, kind := mime.ByExtension(info.Ext)
	if kind == mime.Unsupported {
		return nil, status.NewError(status.UnsupportedMediaType, fmt.Sprintf("File type %s is not supported", info.Ext))
	}

	resp := http.NewResponse().ContentType(contentType)

	switch kind {
	case mime.Text:
		text, err := r.docs.ReadText(path)
		if err != nil {
			r.log.Error("reading file", "path", path, "err", err)
			return nil, status.NewError(status.InternalServerError, "Error reading file")
		}

		r.log.Debug("sending text file", "name", info.Name, "bytes", len(text))
		resp.String(text)
	default:
		data, err := r.docs.ReadBytes(path)
		if err != nil {
			r.log.Error("reading file", "path", path, "err", err)
			return nil, status.NewError(status.InternalServerError, "Error reading file")
		}

		r.log.Debug("sending binary file", "name", info.Name, "bytes", len(data))
		resp.
			Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Name)).
			Bytes(data)
	}

	return resp, nil
}

func (r *Router) post(req *http.Request) (*http.Response, error) {
	contentType, _ := req.Header("content-type")
	if !mime.IsJSON(contentType) {
		r.log.Warn("invalid content-type for POST", "content_type", contentType)
		return nil, status.ErrNotJSON
	}

	var document any
	if err := documents.Unmarshal(req.Body, &document); err != nil {
		r.log.Warn("invalid JSON", "err", err)
		return nil, status.ErrInvalidJSON
	}

	public, err := r.uploads.PersistJSON(document)
	if err != nil {
		r.log.Error("saving upload", "err", err)
		return nil, status.NewError(status.InternalServerError, "Error saving file")
	}

	r.log.Info("JSON file created", "path", public)

	return http.NewResponse().
		Code(status.Created).
		JSON(created{
			Status:   "success",
			Message:  "File created successfully",
			Filepath: public,
		})
}
