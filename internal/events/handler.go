package events

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/alkem-io/correlation-gateway/internal/correlation"
	"github.com/alkem-io/correlation-gateway/internal/httpx"
	"github.com/alkem-io/correlation-gateway/internal/pipeline"
)

// Handler serves the event relay endpoints as pipeline handlers.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new relay handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleEvent handles POST /api/v1/events.
func (h *Handler) HandleEvent(r *http.Request) (any, error) {
	ctx := r.Context()
	correlationID := correlation.ID(ctx)

	var payload EventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn("failed to decode event payload",
			zap.Error(err),
			zap.String("correlation_id", correlationID),
		)
		return nil, httpx.BadRequest(CodeInvalidPayload, "invalid JSON payload", nil, err)
	}

	if validationErrors := h.service.ValidatePayload(&payload); len(validationErrors) > 0 {
		missingFields := make([]string, len(validationErrors))
		details := make(map[string]any, len(validationErrors))
		for i, err := range validationErrors {
			missingFields[i] = err.Field
			details[err.Field] = err.Message
		}
		h.logger.Warn("event payload missing required fields",
			zap.String("correlation_id", correlationID),
			zap.Strings("missing_fields", missingFields),
		)
		return nil, httpx.BadRequest(CodeInvalidPayload,
			"missing required fields: "+strings.Join(missingFields, ", "), details, nil)
	}

	if !h.service.CheckAndMarkSeen(ctx, correlationID) {
		h.logger.Info("event already relayed for this correlation id",
			zap.String("correlation_id", correlationID),
		)
		return pipeline.NewReply(http.StatusOK, EventResponse{
			Status:        StatusSkipped,
			Message:       "event already relayed for this correlation id",
			CorrelationID: correlationID,
		}), nil
	}

	event := h.service.Transform(&payload, correlationID)
	if err := h.service.Publish(ctx, event); err != nil {
		h.logger.Warn("event relay failed",
			zap.Error(err),
			zap.String("correlation_id", correlationID),
		)
		return nil, httpx.BadGateway("event queuing failed", err)
	}

	return pipeline.NewReply(http.StatusAccepted, EventResponse{
		Status:        StatusQueued,
		CorrelationID: correlationID,
	}), nil
}

// HandleCorrelation handles GET /api/v1/correlation. It returns the request's
// correlation id as a plain value.
func (h *Handler) HandleCorrelation(r *http.Request) (any, error) {
	return correlation.ID(r.Context()), nil
}
