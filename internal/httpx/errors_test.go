package httpx_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alkem-io/correlation-gateway/internal/httpx"
)

func TestAsHTTPError_PassesThroughTypedErrors(t *testing.T) {
	he := httpx.BadRequest(httpx.CodeInvalidHeaderFormat, "bad", nil, nil)
	wrapped := fmt.Errorf("handler: %w", he)

	got := httpx.AsHTTPError(wrapped)
	if got != he {
		t.Fatalf("expected the original error to be returned")
	}
	if !httpx.Is(wrapped, httpx.CodeInvalidHeaderFormat) {
		t.Error("expected Is to match the wrapped code")
	}
}

func TestAsHTTPError_WrapsPlainErrors(t *testing.T) {
	cause := errors.New("boom")
	got := httpx.AsHTTPError(cause)

	if got.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", got.StatusCode)
	}
	if !errors.Is(got, cause) {
		t.Error("expected the cause to be unwrappable")
	}
}

func TestWriteError_EnvelopeAndOutputHeaders(t *testing.T) {
	he := httpx.BadRequest(httpx.CodeInvalidHeaderFormat, "Invalid x-correlation-id header format",
		map[string]any{"x-correlation-id": "not-a-uuid"}, nil)
	he.OutputHeaders().Set("X-Extra", "1")
	he.CorrelationID = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"

	rec := httptest.NewRecorder()
	httpx.WriteError(rec, he)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec.Header().Get("X-Extra") != "1" {
		t.Error("expected output headers to be copied")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}

	var resp httpx.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Code != httpx.CodeInvalidHeaderFormat {
		t.Errorf("unexpected code %s", resp.Error.Code)
	}
	if resp.Error.Details["x-correlation-id"] != "not-a-uuid" {
		t.Errorf("unexpected details %v", resp.Error.Details)
	}
	if resp.Error.CorrelationID != he.CorrelationID {
		t.Errorf("expected correlation_id %s, got %q", he.CorrelationID, resp.Error.CorrelationID)
	}
}

func TestWriteError_OmitsEmptyCorrelationID(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteError(rec, httpx.ServiceUnavailable("down"))

	var raw map[string]map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := raw["error"]["correlation_id"]; ok {
		t.Errorf("expected no correlation_id key, got %v", raw["error"])
	}
}
