package service

import (
	"context"

	"smart-triage-be/internal/pkg/logger"
	"smart-triage-be/pkg/events"
	pktNats "smart-triage-be/pkg/nats"
)

// AuditService tails the durable event stream and writes every triage
// lifecycle event to the audit log. Clinical systems need this trail even
// when no dashboard is attached.
type AuditService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewAuditService(subscriber *pktNats.Subscriber, log logger.ILogger) *AuditService {
	return &AuditService{
		subscriber: subscriber,
		logger:     log,
	}
}

// Start subscribes to all triage events with a durable consumer so audit
// entries survive restarts and broker redeliveries.
func (s *AuditService) Start() error {
	return s.subscriber.Subscribe("events.>", "triage-audit", func(ctx context.Context, event events.Event) error {
		s.logger.Info("Audit", "Event recorded", map[string]interface{}{
			"event_type": event.EventType(),
			"payload":    event.Payload(),
		})
		return nil
	})
}
