// Package pipeline implements a small request lifecycle on top of net/http.
//
// A request handled by a Pipeline goes through these steps in order:
//
//  1. decorators attach per-request helpers to the request context
//  2. on-request extensions run; the first error is written as the response
//     and nothing else runs for that request
//  3. the handler produces a value, classified into a Response
//  4. on-pre-response extensions run and may replace the Response
//  5. the final Response is written
package pipeline

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/alkem-io/correlation-gateway/internal/httpx"
)

// Phase names a lifecycle extension point.
type Phase string

// Lifecycle phases.
const (
	PhaseOnRequest     Phase = "on-request"
	PhaseOnPreResponse Phase = "on-pre-response"
)

// ErrPluginRegistered is returned when a plugin is registered twice.
var ErrPluginRegistered = errors.New("plugin already registered")

// Handler produces the response value for a request.
type Handler func(r *http.Request) (any, error)

// RequestExt runs before the handler. A non-nil error aborts the request.
type RequestExt func(r *http.Request) error

// ResponseExt runs after the handler and returns the response to send.
type ResponseExt func(r *http.Request, resp Response) Response

// Decorator returns the request to use for the rest of the lifecycle.
type Decorator func(r *http.Request) *http.Request

// Pipeline holds lifecycle extensions. Register everything before calling
// Handle; registration is not safe for concurrent use.
type Pipeline struct {
	logger        *zap.Logger
	decorators    []Decorator
	onRequest     []RequestExt
	onPreResponse []ResponseExt
	plugins       map[string]struct{}
}

// New creates an empty pipeline.
func New(logger *zap.Logger) *Pipeline {
	return &Pipeline{
		logger:  logger,
		plugins: make(map[string]struct{}),
	}
}

// OnRequest registers an on-request extension.
func (p *Pipeline) OnRequest(ext RequestExt) {
	p.onRequest = append(p.onRequest, ext)
}

// OnPreResponse registers an on-pre-response extension.
func (p *Pipeline) OnPreResponse(ext ResponseExt) {
	p.onPreResponse = append(p.onPreResponse, ext)
}

// Decorate registers a request decorator.
func (p *Pipeline) Decorate(d Decorator) {
	p.decorators = append(p.decorators, d)
}

// Register runs a plugin's register function once per pipeline. If register
// fails, everything it added is rolled back.
func (p *Pipeline) Register(name string, register func(*Pipeline) error) error {
	if _, ok := p.plugins[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrPluginRegistered)
	}

	nDecorators, nOnRequest, nOnPreResponse := len(p.decorators), len(p.onRequest), len(p.onPreResponse)
	if err := register(p); err != nil {
		p.decorators = p.decorators[:nDecorators]
		p.onRequest = p.onRequest[:nOnRequest]
		p.onPreResponse = p.onPreResponse[:nOnPreResponse]
		return fmt.Errorf("failed to register plugin %s: %w", name, err)
	}

	p.plugins[name] = struct{}{}
	p.logger.Debug("plugin registered", zap.String("plugin", name))
	return nil
}

// Handle returns an http.Handler running h through the lifecycle. The
// extensions registered so far are captured; later registrations do not
// affect the returned handler.
func (p *Pipeline) Handle(h Handler) http.Handler {
	decorators := append([]Decorator(nil), p.decorators...)
	onRequest := append([]RequestExt(nil), p.onRequest...)
	onPreResponse := append([]ResponseExt(nil), p.onPreResponse...)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, d := range decorators {
			r = d(r)
		}

		for _, ext := range onRequest {
			if err := ext(r); err != nil {
				he := httpx.AsHTTPError(err)
				p.logger.Warn("request aborted",
					zap.String("phase", string(PhaseOnRequest)),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("code", he.Code),
					zap.Error(err),
				)
				httpx.WriteError(w, he)
				return
			}
		}

		resp := Classify(h(r))
		if f, ok := resp.(*Fault); ok && f.Err.StatusCode >= http.StatusInternalServerError {
			p.logger.Error("handler failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(f.Err),
			)
		}

		for _, ext := range onPreResponse {
			resp = ext(r, resp)
		}

		Write(w, resp)
	})
}
