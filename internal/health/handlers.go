// Package health provides health check endpoints.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/alkem-io/correlation-gateway/internal/httpx"
)

// Response is the response for liveness check.
type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadinessResponse is the response for readiness check.
type ReadinessResponse struct {
	Status    string `json:"status"`
	Redis     string `json:"redis"`
	RabbitMQ  string `json:"rabbitmq"`
	Timestamp string `json:"timestamp"`
}

// RedisPinger is satisfied by *clients.RedisClient.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// BrokerPinger is satisfied by *clients.RabbitMQClient.
type BrokerPinger interface {
	Ping() error
}

// Handlers holds dependencies for health check handlers.
type Handlers struct {
	redisClient    RedisPinger
	rabbitMQClient BrokerPinger
}

// NewHandlers creates a new health handlers instance.
func NewHandlers(redis RedisPinger, rabbitmq BrokerPinger) *Handlers {
	return &Handlers{
		redisClient:    redis,
		rabbitMQClient: rabbitmq,
	}
}

// LiveHandler handles GET /health/live.
func (h *Handlers) LiveHandler(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, Response{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyHandler handles GET /health/ready.
func (h *Handlers) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	redisStatus := "connected"
	rabbitMQStatus := "connected"
	overallStatus := "ok"

	if err := h.redisClient.Ping(ctx); err != nil {
		redisStatus = "disconnected"
		overallStatus = "unhealthy"
	}

	if err := h.rabbitMQClient.Ping(); err != nil {
		rabbitMQStatus = "disconnected"
		overallStatus = "unhealthy"
	}

	status := http.StatusOK
	if overallStatus == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, ReadinessResponse{
		Status:    overallStatus,
		Redis:     redisStatus,
		RabbitMQ:  rabbitMQStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
