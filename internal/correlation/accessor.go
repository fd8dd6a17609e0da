package correlation

import (
	"context"
	"net/http"
)

type accessorKey struct{}

// Accessor returns a function reading header off a request. It returns the
// value when it is a valid id and a freshly generated one otherwise. The
// accessor does not depend on mode or correlate and never mutates the request.
func Accessor(header string, generate Generator) func(*http.Request) string {
	return func(r *http.Request) string {
		if id := requestHeader(r, header); Valid(id) {
			return id
		}
		return generate()
	}
}

// Decorate attaches the accessor to the request context. It is registered
// even when correlate is false.
func (c *Correlator) Decorate(r *http.Request) *http.Request {
	accessor := Accessor(c.cfg.header, c.generate)
	// The closure holds r, whose Header map is shared with the returned
	// request, so later inbound mutations are visible.
	get := func() string { return accessor(r) }
	return r.WithContext(context.WithValue(r.Context(), accessorKey{}, get))
}

// ID evaluates the request's accessor. Each call re-reads the header. It
// returns "" when ctx does not come from a decorated request.
func ID(ctx context.Context) string {
	if get, ok := ctx.Value(accessorKey{}).(func() string); ok {
		return get()
	}
	return ""
}
