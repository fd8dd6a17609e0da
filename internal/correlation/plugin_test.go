package correlation_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/alkem-io/correlation-gateway/internal/correlation"
	"github.com/alkem-io/correlation-gateway/internal/httpx"
	"github.com/alkem-io/correlation-gateway/internal/pipeline"
)

type serveResult struct {
	rec           *httptest.ResponseRecorder
	inboundHeader string
	handlerCalled bool
}

// serve registers the plugin on a fresh pipeline and runs one request whose
// handler returns value.
func serve(t *testing.T, opts correlation.Options, headerValue string, value any) serveResult {
	t.Helper()
	p := pipeline.New(zap.NewNop())
	seq := &sequence{}
	if _, err := correlation.Register(p, opts, zap.NewNop(), correlation.WithGenerator(seq.next)); err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	var res serveResult
	h := p.Handle(func(r *http.Request) (any, error) {
		res.handlerCalled = true
		res.inboundHeader = r.Header.Get(header)
		return value, nil
	})

	res.rec = httptest.NewRecorder()
	h.ServeHTTP(res.rec, newRequest(headerValue))
	return res
}

func TestRegister_InvalidOptionsRegistersNothing(t *testing.T) {
	p := pipeline.New(zap.NewNop())

	_, err := correlation.Register(p, correlation.Options{Mode: "sideways"}, zap.NewNop())
	var cfgErr *correlation.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}

	rec := httptest.NewRecorder()
	p.Handle(func(r *http.Request) (any, error) { return "ok", nil }).
		ServeHTTP(rec, newRequest(""))
	if rec.Header().Get(header) != "" {
		t.Error("a failed registration must not leave hooks behind")
	}

	if _, err := correlation.Register(p, correlation.Options{}, zap.NewNop()); err != nil {
		t.Fatalf("expected a later valid registration to succeed, got %v", err)
	}
}

func TestRegister_Once(t *testing.T) {
	p := pipeline.New(zap.NewNop())
	if _, err := correlation.Register(p, correlation.Options{}, zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := correlation.Register(p, correlation.Options{}, zap.NewNop()); !errors.Is(err, pipeline.ErrPluginRegistered) {
		t.Errorf("expected ErrPluginRegistered, got %v", err)
	}
}

func TestPipeline_CorrelateDisabledIsIdentity(t *testing.T) {
	for _, mode := range correlation.Modes {
		for _, value := range []string{"", validID, malformedID} {
			res := serve(t, correlation.Options{Mode: string(mode), Correlate: correlation.Bool(false)}, value, "body")

			if res.inboundHeader != value {
				t.Errorf("mode %s: inbound header changed from %q to %q", mode, value, res.inboundHeader)
			}
			if got := res.rec.Header().Get(header); got != "" {
				t.Errorf("mode %s: expected no response header, got %q", mode, got)
			}
			if res.rec.Code != http.StatusOK {
				t.Errorf("mode %s: expected 200, got %d", mode, res.rec.Code)
			}
		}
	}
}

func TestPipeline_AllPropagatesInjectedID(t *testing.T) {
	for _, value := range []any{"text", 12, map[string]string{"k": "v"}} {
		res := serve(t, correlation.Options{Mode: "all"}, "", value)

		if !correlation.Valid(res.inboundHeader) {
			t.Fatalf("expected an injected inbound id, got %q", res.inboundHeader)
		}
		if got := res.rec.Header().Get(header); got != res.inboundHeader {
			t.Errorf("expected response id %s to equal injected id, got %s", res.inboundHeader, got)
		}
	}
}

func TestPipeline_ProxyNeverOriginates(t *testing.T) {
	for _, value := range []any{"text", 12, map[string]string{"k": "v"}} {
		res := serve(t, correlation.Options{Mode: "proxy"}, "", value)

		if res.inboundHeader != "" {
			t.Errorf("proxy mode must not inject an inbound id, got %q", res.inboundHeader)
		}
		if got := res.rec.Header().Get(header); got != "" {
			t.Errorf("proxy mode must not originate a response id, got %q", got)
		}
	}
}

func TestPipeline_ProxyPassesThroughExactly(t *testing.T) {
	for _, value := range []string{validID, upperID} {
		res := serve(t, correlation.Options{Mode: "proxy"}, value, 99)

		if got := res.rec.Header().Get(header); got != value {
			t.Errorf("expected %s, got %s", value, got)
		}
		if res.rec.Body.String() != "99" {
			t.Errorf("expected raw body to survive wrapping, got %q", res.rec.Body.String())
		}
	}
}

func TestPipeline_StrictRejectsAndShortCircuits(t *testing.T) {
	res := serve(t, correlation.Options{}, malformedID, "body")

	if res.rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.rec.Code)
	}
	if res.handlerCalled {
		t.Error("handler must not run after a strict rejection")
	}
	if got := res.rec.Header().Get(header); got != "" {
		t.Errorf("outbound handler must not run, but response carries %q", got)
	}

	var resp httpx.ErrorResponse
	if err := json.NewDecoder(res.rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Message != "Invalid x-correlation-id header format" {
		t.Errorf("unexpected message %q", resp.Error.Message)
	}
	if len(resp.Error.Details) != 1 || resp.Error.Details["x-correlation-id"] != malformedID {
		t.Errorf("unexpected details %v", resp.Error.Details)
	}
}

func TestPipeline_NonStrictEchoesMalformed(t *testing.T) {
	for _, mode := range []correlation.Mode{correlation.ModeAll, correlation.ModeProxy} {
		res := serve(t, correlation.Options{Mode: string(mode), Strict: correlation.Bool(false)}, malformedID, "body")

		if res.inboundHeader != malformedID {
			t.Errorf("mode %s: expected inbound value unchanged, got %q", mode, res.inboundHeader)
		}
		if got := res.rec.Header().Get(header); got != malformedID {
			t.Errorf("mode %s: expected verbatim echo, got %q", mode, got)
		}
	}
}

func TestPipeline_ResponseOnlyRawWrapped(t *testing.T) {
	res := serve(t, correlation.Options{Mode: "response-only"}, "", "plain")

	if res.inboundHeader != "" {
		t.Errorf("response-only must not touch the request, got %q", res.inboundHeader)
	}
	if got := res.rec.Header().Get(header); !correlation.Valid(got) {
		t.Errorf("expected a generated id on the wrapped response, got %q", got)
	}
	if res.rec.Body.String() != "plain" {
		t.Errorf("expected body plain, got %q", res.rec.Body.String())
	}
}

func TestPipeline_FaultCarriesHeader(t *testing.T) {
	p := pipeline.New(zap.NewNop())
	if _, err := correlation.Register(p, correlation.Options{}, zap.NewNop()); err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	h := p.Handle(func(r *http.Request) (any, error) {
		return nil, errors.New("downstream unavailable")
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newRequest(validID))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := rec.Header().Get(header); got != validID {
		t.Errorf("expected fault to carry %s, got %q", validID, got)
	}

	var resp httpx.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.CorrelationID != validID {
		t.Errorf("expected envelope correlation_id %s, got %q", validID, resp.Error.CorrelationID)
	}
}

var errItemNotFound = &httpx.HTTPError{StatusCode: http.StatusNotFound, Code: "not_found", Message: "item not found"}

func TestPipeline_SharedErrorKeepsPerRequestID(t *testing.T) {
	p := pipeline.New(zap.NewNop())
	if _, err := correlation.Register(p, correlation.Options{}, zap.NewNop()); err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	h := p.Handle(func(r *http.Request) (any, error) { return nil, errItemNotFound })

	for _, id := range []string{validID, upperID} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest(id))

		if got := rec.Header().Get(header); got != id {
			t.Errorf("expected response id %s, got %q", id, got)
		}
	}
	if errItemNotFound.Headers != nil || errItemNotFound.CorrelationID != "" {
		t.Error("shared error value must not be mutated")
	}
}

func TestPipeline_HandlerSeesAccessor(t *testing.T) {
	p := pipeline.New(zap.NewNop())
	if _, err := correlation.Register(p, correlation.Options{Mode: "request-only"}, zap.NewNop()); err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	var seen, inbound string
	h := p.Handle(func(r *http.Request) (any, error) {
		seen = correlation.ID(r.Context())
		inbound = r.Header.Get(header)
		return pipeline.NewReply(http.StatusNoContent, nil), nil
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newRequest(""))

	if seen == "" || seen != inbound {
		t.Errorf("expected accessor to return injected id %q, got %q", inbound, seen)
	}
	if got := rec.Header().Get(header); got != "" {
		t.Errorf("request-only must not set a response header, got %q", got)
	}
}
