package correlation

import (
	"net/http"

	"github.com/alkem-io/correlation-gateway/internal/pipeline"
)

var phaseOnPreResponse = string(pipeline.PhaseOnPreResponse)

// OnPreResponse makes sure the response carries the header according to the
// mode. Replies and faults are mutated in place; a Raw value is wrapped into a
// new Reply, which is returned in its place.
func (c *Correlator) OnPreResponse(r *http.Request, resp pipeline.Response) pipeline.Response {
	if !c.cfg.correlate {
		return resp
	}

	switch res := resp.(type) {
	case *pipeline.Reply:
		if id, ok := c.outboundID(r, res.HeaderValue(c.cfg.header)); ok {
			res.SetHeader(c.cfg.header, id)
		}
	case *pipeline.Fault:
		if id, ok := c.outboundID(r, res.HeaderValue(c.cfg.header)); ok {
			res.SetHeader(c.cfg.header, id)
		}
		res.Err.CorrelationID = res.HeaderValue(c.cfg.header)
	case pipeline.Raw:
		if id, ok := c.outboundID(r, ""); ok {
			return res.Wrap().SetHeader(c.cfg.header, id)
		}
	}
	return resp
}

// outboundID returns the id to set on a response whose current header value
// is existing, and false when the response must be left untouched.
func (c *Correlator) outboundID(r *http.Request, existing string) (string, bool) {
	switch c.cfg.mode {
	case ModeResponseOnly:
		if existing != "" {
			c.observe(phaseOnPreResponse, OutcomeKept)
			return "", false
		}
		return c.newID(phaseOnPreResponse), true
	case ModeProxy:
		inbound := requestHeader(r, c.cfg.header)
		if inbound == "" {
			return "", false
		}
		c.observe(phaseOnPreResponse, OutcomePropagated)
		return inbound, true
	case ModeAll:
		if existing != "" {
			c.observe(phaseOnPreResponse, OutcomeKept)
			return "", false
		}
		// The raw inbound value is echoed, so with strict=false a malformed
		// id goes back out unchanged.
		if inbound := requestHeader(r, c.cfg.header); inbound != "" {
			c.observe(phaseOnPreResponse, OutcomePropagated)
			return inbound, true
		}
		return c.newID(phaseOnPreResponse), true
	case ModeRequestOnly:
	}
	return "", false
}
