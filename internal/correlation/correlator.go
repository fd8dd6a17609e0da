// Package correlation attaches a correlation identifier to requests and
// responses according to a configurable propagation mode.
package correlation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alkem-io/correlation-gateway/internal/httpx"
)

// ErrInvalidHeaderFormat is wrapped by the 400 returned for a malformed
// inbound id in strict mode.
var ErrInvalidHeaderFormat = errors.New("invalid correlation header format")

// Generator returns a fresh unique identifier on every call.
type Generator func() string

// Observer is notified of every decision the handlers take.
type Observer interface {
	Observe(phase, outcome string)
}

// Outcomes reported to the Observer.
const (
	OutcomeGenerated  = "generated"
	OutcomeAccepted   = "accepted"
	OutcomeRejected   = "rejected"
	OutcomePropagated = "propagated"
	OutcomeKept       = "kept"
)

// Correlator runs the inbound and outbound correlation policy for one
// resolved Config. It is safe for concurrent use.
type Correlator struct {
	cfg      Config
	generate Generator
	observer Observer
	logger   *zap.Logger
}

// CorrelatorOption customises a Correlator.
type CorrelatorOption func(*Correlator)

// WithGenerator replaces the default UUID generator.
func WithGenerator(g Generator) CorrelatorOption {
	return func(c *Correlator) { c.generate = g }
}

// WithObserver registers an observer for handler outcomes.
func WithObserver(o Observer) CorrelatorOption {
	return func(c *Correlator) { c.observer = o }
}

// New creates a Correlator for cfg.
func New(cfg Config, logger *zap.Logger, opts ...CorrelatorOption) *Correlator {
	c := &Correlator{
		cfg:      cfg,
		generate: uuid.NewString,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the resolved configuration.
func (c *Correlator) Config() Config { return c.cfg }

// Valid reports whether id is a canonical 36 character hyphenated UUID.
// Hex digits are matched case-insensitively.
func Valid(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func (c *Correlator) newID(phase string) string {
	id := c.generate()
	c.observe(phase, OutcomeGenerated)
	c.logger.Debug("correlation id generated",
		zap.String("phase", phase),
		zap.String("header", c.cfg.header),
		zap.String("correlation_id", id),
	)
	return id
}

func (c *Correlator) observe(phase, outcome string) {
	if c.observer != nil {
		c.observer.Observe(phase, outcome)
	}
}

func (c *Correlator) invalidHeader(value string) error {
	return httpx.BadRequest(
		httpx.CodeInvalidHeaderFormat,
		fmt.Sprintf("Invalid %s header format", c.cfg.header),
		map[string]any{c.cfg.header: value},
		ErrInvalidHeaderFormat,
	)
}

// requestHeader returns the header value, joining repeated fields with ", "
// so a duplicated id never validates.
func requestHeader(r *http.Request, name string) string {
	if r.Header == nil {
		return ""
	}
	return strings.Join(r.Header.Values(name), ", ")
}
