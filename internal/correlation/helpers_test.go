package correlation_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/alkem-io/correlation-gateway/internal/correlation"
)

const (
	validID     = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"
	upperID     = "3F2504E0-4F89-41D3-9A0C-0305E82C3301"
	malformedID = "not-a-uuid"
	header      = "x-correlation-id"
)

// sequence generates predictable, valid ids.
type sequence struct {
	n int
}

func (s *sequence) next() string {
	s.n++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", s.n)
}

type recordingObserver struct {
	events []string
}

func (o *recordingObserver) Observe(phase, outcome string) {
	o.events = append(o.events, phase+":"+outcome)
}

func newCorrelator(t *testing.T, opts correlation.Options) (*correlation.Correlator, *sequence) {
	t.Helper()
	cfg, err := correlation.Resolve(opts)
	if err != nil {
		t.Fatalf("failed to resolve options: %v", err)
	}
	seq := &sequence{}
	return correlation.New(cfg, zap.NewNop(), correlation.WithGenerator(seq.next)), seq
}

func newRequest(headerValue string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	if headerValue != "" {
		req.Header.Set("X-Correlation-ID", headerValue)
	}
	return req
}

func zapNop() *zap.Logger { return zap.NewNop() }
