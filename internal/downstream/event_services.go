package downstream

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "mailtriage/contracts/mq"
	"mailtriage/pkg/trace"
)

// Publisher is satisfied by *mq.Publisher.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// EventServices turns every downstream action into an event on the bus.
type EventServices struct {
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewEventServices(publisher Publisher, logger *zap.Logger) *EventServices {
	return &EventServices{
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *EventServices) SendComplaintResponse(ctx context.Context, to, body string) error {
	return s.publish(ctx, mqcontracts.RoutingResponseComplaint, mqcontracts.ResponseSendPayload{
		To:        to,
		Body:      body,
		Channel:   "complaint",
		CreatedAt: s.now(),
		TraceID:   trace.FromContext(ctx),
	})
}

func (s *EventServices) SendStandardResponse(ctx context.Context, to, body string) error {
	return s.publish(ctx, mqcontracts.RoutingResponseStandard, mqcontracts.ResponseSendPayload{
		To:        to,
		Body:      body,
		Channel:   "standard",
		CreatedAt: s.now(),
		TraceID:   trace.FromContext(ctx),
	})
}

func (s *EventServices) CreateUrgentTicket(ctx context.Context, sender, category, details string) error {
	return s.publish(ctx, mqcontracts.RoutingTicketUrgent, mqcontracts.TicketCreatedPayload{
		Sender:    sender,
		Priority:  "URGENT",
		Category:  category,
		Context:   details,
		CreatedAt: s.now(),
		TraceID:   trace.FromContext(ctx),
	})
}

func (s *EventServices) CreateSupportTicket(ctx context.Context, sender, details string) error {
	return s.publish(ctx, mqcontracts.RoutingTicketSupport, mqcontracts.TicketCreatedPayload{
		Sender:    sender,
		Priority:  "STANDARD",
		Context:   details,
		CreatedAt: s.now(),
		TraceID:   trace.FromContext(ctx),
	})
}

func (s *EventServices) LogFeedback(ctx context.Context, sender, feedback string) error {
	return s.publish(ctx, mqcontracts.RoutingFeedbackLogged, mqcontracts.FeedbackLoggedPayload{
		Sender:    sender,
		Feedback:  feedback,
		CreatedAt: s.now(),
		TraceID:   trace.FromContext(ctx),
	})
}

func (s *EventServices) publish(ctx context.Context, routingKey string, payload any) error {
	if err := s.publisher.Publish(ctx, routingKey, payload); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	s.logger.Debug("Published downstream event", zap.String("routing_key", routingKey))
	return nil
}
