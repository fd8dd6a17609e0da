package pipeline

import (
	"net/http"
	"reflect"

	"github.com/alkem-io/correlation-gateway/internal/httpx"
)

// Response is the value a handler produced for a request. It is exactly one
// of *Reply, *Fault or Raw.
type Response interface {
	isResponse()
}

// Reply is a structured success response with a mutable header set.
type Reply struct {
	Status int
	Header http.Header
	Body   any
}

// NewReply creates a reply with an empty header set.
func NewReply(status int, body any) *Reply {
	return &Reply{Status: status, Header: make(http.Header), Body: body}
}

// SetHeader sets a response header and returns the reply for chaining.
func (r *Reply) SetHeader(name, value string) *Reply {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(name, value)
	return r
}

// HeaderValue returns the first value of the named header, or "".
func (r *Reply) HeaderValue(name string) string {
	return r.Header.Get(name)
}

func (*Reply) isResponse() {}

// Fault is an error response. Headers set on a fault go to the error's
// output header collection.
type Fault struct {
	Err *httpx.HTTPError
}

// NewFault wraps any error as a fault. The fault owns a copy of the
// underlying HTTPError, so output headers never leak into an error value
// shared between requests.
func NewFault(err error) *Fault {
	he := *httpx.AsHTTPError(err)
	he.Headers = he.Headers.Clone()
	return &Fault{Err: &he}
}

// SetHeader sets an output header on the underlying error.
func (f *Fault) SetHeader(name, value string) {
	f.Err.OutputHeaders().Set(name, value)
}

// HeaderValue returns the first value of the named output header, or "".
func (f *Fault) HeaderValue(name string) string {
	return f.Err.Headers.Get(name)
}

func (*Fault) isResponse() {}

// Raw is a primitive handler result (string, number, bool, bytes). It has
// no header container; Wrap lowers it into a Reply.
type Raw struct {
	Value any
}

// Wrap returns a new 200 reply carrying the raw value as body.
func (r Raw) Wrap() *Reply {
	return NewReply(http.StatusOK, r.Value)
}

func (Raw) isResponse() {}

// Classify turns a handler result into a Response.
func Classify(v any, err error) Response {
	if err != nil {
		return NewFault(err)
	}
	switch resp := v.(type) {
	case *Reply:
		if resp == nil {
			return NewReply(http.StatusNoContent, nil)
		}
		return resp
	case *Fault:
		if resp == nil || resp.Err == nil {
			return NewFault(nil)
		}
		return NewFault(resp.Err)
	case Response:
		return resp
	case nil:
		return NewReply(http.StatusNoContent, nil)
	case string, []byte:
		return Raw{Value: v}
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Raw{Value: v}
	}
	return NewReply(http.StatusOK, v)
}
