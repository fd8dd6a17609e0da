package correlation

import (
	"context"
	"net/http"

	"github.com/alkem-io/correlation-gateway/internal/httpx"
)

// Middleware applies the correlator to a plain http.Handler. The
// ResponseWriter acts as the structured response: the outbound policy runs
// right before the status line is written.
func Middleware(c *Correlator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = c.Decorate(r)
			if err := c.OnRequest(r); err != nil {
				httpx.WriteError(w, httpx.AsHTTPError(err))
				return
			}

			ex := &exchange{c: c}
			r = r.WithContext(context.WithValue(r.Context(), exchangeKey{}, ex))
			cw := &correlatedWriter{ResponseWriter: w, c: c, r: r, ex: ex}
			next.ServeHTTP(cw, r)
			// Nothing written yet means the header map is still mutable.
			cw.apply()
		})
	}
}

type exchangeKey struct{}

// exchange is the per-request state Middleware shares with the pipeline
// hooks of the same correlator.
type exchange struct {
	c         *Correlator
	responded bool
}

func exchangeFor(r *http.Request, c *Correlator) *exchange {
	ex, ok := r.Context().Value(exchangeKey{}).(*exchange)
	if !ok || ex.c != c {
		return nil
	}
	return ex
}

type correlatedWriter struct {
	http.ResponseWriter
	c       *Correlator
	r       *http.Request
	ex      *exchange
	applied bool
}

func (cw *correlatedWriter) apply() {
	if cw.applied {
		return
	}
	cw.applied = true
	if !cw.c.cfg.correlate || cw.ex.responded {
		return
	}
	header := cw.c.cfg.header
	if id, ok := cw.c.outboundID(cw.r, cw.Header().Get(header)); ok {
		cw.Header().Set(header, id)
	}
}

func (cw *correlatedWriter) WriteHeader(code int) {
	cw.apply()
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *correlatedWriter) Write(b []byte) (int, error) {
	cw.apply()
	return cw.ResponseWriter.Write(b)
}

func (cw *correlatedWriter) Flush() {
	cw.apply()
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (cw *correlatedWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
