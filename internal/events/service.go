package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Store remembers which correlation ids already had an event relayed.
type Store interface {
	MarkEventSeenIfNew(ctx context.Context, correlationID string, ttl time.Duration) (bool, error)
	ForgetEvent(ctx context.Context, correlationID string) error
}

// Publisher sends an event to the broker.
type Publisher interface {
	Publish(ctx context.Context, event any, correlationID string) error
}

// Service handles the business logic for relaying events.
type Service struct {
	store     Store
	publisher Publisher
	dedupTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new relay service.
func NewService(store Store, publisher Publisher, dedupTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		dedupTTL:  dedupTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// ValidationError represents a payload validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidatePayload validates an incoming event payload.
func (s *Service) ValidatePayload(payload *EventPayload) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(payload.Type) == "" {
		errors = append(errors, ValidationError{Field: "type", Message: "required"})
	}
	if strings.TrimSpace(payload.Source) == "" {
		errors = append(errors, ValidationError{Field: "source", Message: "required"})
	}

	return errors
}

// CheckAndMarkSeen reports whether an event for correlationID should be
// relayed. On store errors it returns true (fail-open).
func (s *Service) CheckAndMarkSeen(ctx context.Context, correlationID string) bool {
	isNew, err := s.store.MarkEventSeenIfNew(ctx, correlationID, s.dedupTTL)
	if err != nil {
		s.logger.Warn("redis unavailable for dedup check, relaying anyway",
			zap.Error(err),
			zap.String("correlation_id", correlationID),
		)
		return true
	}
	return isNew
}

// Transform converts a payload into the message published to the broker.
func (s *Service) Transform(payload *EventPayload, correlationID string) RelayedEvent {
	return RelayedEvent{
		EventType:     strings.TrimSpace(payload.Type),
		Source:        strings.TrimSpace(payload.Source),
		CorrelationID: correlationID,
		ReceivedAt:    s.now().UTC().Format(time.RFC3339),
		Data:          payload.Data,
	}
}

// Publish sends the event. On failure the dedup marker is dropped so the
// client can retry with the same correlation id.
func (s *Service) Publish(ctx context.Context, event RelayedEvent) error {
	if err := s.publisher.Publish(ctx, event, event.CorrelationID); err != nil {
		if ferr := s.store.ForgetEvent(ctx, event.CorrelationID); ferr != nil {
			s.logger.Warn("failed to clear dedup marker after publish failure",
				zap.Error(ferr),
				zap.String("correlation_id", event.CorrelationID),
			)
		}
		return fmt.Errorf("failed to publish event: %w", err)
	}

	s.logger.Info("event published",
		zap.String("correlation_id", event.CorrelationID),
		zap.String("event_type", event.EventType),
		zap.String("source", event.Source),
	)
	return nil
}
