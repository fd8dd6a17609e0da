package correlation

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/alkem-io/correlation-gateway/internal/pipeline"
)

var phaseOnRequest = string(pipeline.PhaseOnRequest)

// OnRequest inspects the inbound header before the handler runs. In strict
// mode a present but malformed id yields a 400 *httpx.HTTPError; without
// strict mode any present value is accepted as is. A missing id is generated
// and injected into r.Header except in proxy mode.
func (c *Correlator) OnRequest(r *http.Request) error {
	if !c.cfg.correlate {
		return nil
	}

	switch c.cfg.mode {
	case ModeRequestOnly, ModeProxy, ModeAll:
		if value := requestHeader(r, c.cfg.header); value != "" {
			if c.cfg.strict && !Valid(value) {
				c.observe(phaseOnRequest, OutcomeRejected)
				c.logger.Warn("rejected malformed correlation id",
					zap.String("header", c.cfg.header),
					zap.String("value", value),
					zap.String("path", r.URL.Path),
				)
				return c.invalidHeader(value)
			}
			c.observe(phaseOnRequest, OutcomeAccepted)
			return nil
		}

		if c.cfg.mode == ModeProxy {
			return nil
		}
		if r.Header == nil {
			r.Header = make(http.Header)
		}
		r.Header.Set(c.cfg.header, c.newID(phaseOnRequest))
	case ModeResponseOnly:
	}
	return nil
}
