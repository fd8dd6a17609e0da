package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/alkem-io/correlation-gateway/internal/httpx"
)

// Maintenance creates middleware that returns 503 when maintenance mode is
// enabled. Health and metrics endpoints are always served.
func Maintenance(enabled bool, message string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/health/") || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			logger.Info("request rejected due to maintenance mode",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)

			he := httpx.ServiceUnavailable(message)
			he.OutputHeaders().Set("Retry-After", "300")
			httpx.WriteError(w, he)
		})
	}
}
