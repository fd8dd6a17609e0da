package correlation

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/alkem-io/correlation-gateway/internal/pipeline"
)

// PluginName is the name the correlator registers under.
const PluginName = "correlation-id"

// Register resolves opts and binds the correlator to p: the inbound handler
// on on-request, the outbound handler on on-pre-response and the accessor as
// a request decoration. Invalid options register nothing. When the same
// correlator also runs as Middleware around the pipeline, the inbound pass
// and decoration happen once in the middleware.
func Register(p *pipeline.Pipeline, opts Options, logger *zap.Logger, extra ...CorrelatorOption) (*Correlator, error) {
	var c *Correlator
	err := p.Register(PluginName, func(p *pipeline.Pipeline) error {
		cfg, err := Resolve(opts)
		if err != nil {
			return err
		}
		c = New(cfg, logger, extra...)

		// Requests already handled by Middleware for the same correlator
		// only get the outbound pass here.
		p.OnRequest(func(r *http.Request) error {
			if exchangeFor(r, c) != nil {
				return nil
			}
			return c.OnRequest(r)
		})
		p.OnPreResponse(func(r *http.Request, resp pipeline.Response) pipeline.Response {
			resp = c.OnPreResponse(r, resp)
			if ex := exchangeFor(r, c); ex != nil {
				ex.responded = true
			}
			return resp
		})
		p.Decorate(func(r *http.Request) *http.Request {
			if exchangeFor(r, c) != nil {
				return r
			}
			return c.Decorate(r)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("correlation plugin registered",
		zap.Bool("correlate", c.cfg.correlate),
		zap.String("mode", c.cfg.mode.String()),
		zap.String("header", c.cfg.header),
		zap.Bool("strict", c.cfg.strict),
	)
	return c, nil
}
