package fileserver

import (
	"errors"
	"fmt"

	"github.com/apoxy-dev/apoxy-static/pkg/docroot"
	"github.com/apoxy-dev/apoxy-static/pkg/httpwire"
	"github.com/apoxy-dev/apoxy-static/pkg/mimetype"
)

// ErrUnsupportedMethod is reported for any method other than GET.
var ErrUnsupportedMethod = errors.New("unsupported method")

// Router turns a parsed request into a response.
type Router struct {
	root *docroot.Root
}

// NewRouter returns a Router serving files from root.
func NewRouter(root *docroot.Root) *Router {
	return &Router{root: root}
}

// Route serves req. The returned error describes why a non-200 response was
// chosen and is meant for logging only; the response is always usable.
func (r *Router) Route(req *httpwire.Request) (*httpwire.Response, error) {
	if req.Method != "GET" {
		return httpwire.NotImplemented(), fmt.Errorf("%w: %s", ErrUnsupportedMethod, req.Method)
	}

	path, err := r.root.Resolve(req.Target)
	if err != nil {
		return r.RouteError(err), err
	}
	c, err := r.root.Load(path)
	if err != nil {
		return r.RouteError(err), err
	}

	return httpwire.OK(mimetype.FromPath(path), c.Data), nil
}

// RouteError returns the canned response for err.
func (r *Router) RouteError(err error) *httpwire.Response {
	switch {
	case errors.Is(err, ErrUnsupportedMethod):
		return httpwire.NotImplemented()
	case errors.Is(err, httpwire.ErrRequestLineTooLong), errors.Is(err, httpwire.ErrMalformedRequest):
		return httpwire.BadRequest()
	case errors.Is(err, docroot.ErrNotFound):
		return httpwire.NotFound()
	default:
		return httpwire.InternalServerError()
	}
}
