package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mailtriage/internal/downstream"
	"mailtriage/internal/model"
	"mailtriage/pkg/logger"
	"mailtriage/pkg/metrics"
)

// Handler names, one per downstream action.
const (
	HandlerUrgentTicket  = "urgent_ticket"
	HandlerSupportTicket = "support_ticket"
	HandlerFeedbackLog   = "feedback_log"
	HandlerNone          = "none"
)

// HandlerFor names the handler a category dispatches to. Unknown categories
// get the other handler.
func HandlerFor(category model.Category) string {
	switch category {
	case model.CategoryComplaint:
		return HandlerUrgentTicket
	case model.CategoryInquiry, model.CategorySupportRequest:
		return HandlerSupportTicket
	case model.CategoryFeedback:
		return HandlerFeedbackLog
	default:
		return HandlerNone
	}
}

type Dispatcher struct {
	tickets  downstream.Ticketing
	feedback downstream.FeedbackLog
	logger   *zap.Logger
}

func NewDispatcher(tickets downstream.Ticketing, feedback downstream.FeedbackLog, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		tickets:  tickets,
		feedback: feedback,
		logger:   logger,
	}
}

// Dispatch invokes exactly one handler for category. A handler error is
// returned wrapped in ErrHandlerFailed.
func (d *Dispatcher) Dispatch(ctx context.Context, email model.Email, category model.Category) error {
	var err error
	switch category {
	case model.CategoryComplaint:
		err = d.handleComplaint(ctx, email)
	case model.CategoryInquiry:
		err = d.handleInquiry(ctx, email)
	case model.CategorySupportRequest:
		err = d.handleSupportRequest(ctx, email)
	case model.CategoryFeedback:
		err = d.handleFeedback(ctx, email)
	default:
		err = d.handleOther(ctx, email)
	}

	handler := HandlerFor(category)
	if err != nil {
		metrics.IncrementHandlerDispatch(handler, "error")
		return fmt.Errorf("%w (%s): %w", ErrHandlerFailed, handler, err)
	}
	metrics.IncrementHandlerDispatch(handler, "success")
	return nil
}

func (d *Dispatcher) handleComplaint(ctx context.Context, email model.Email) error {
	return d.tickets.CreateUrgentTicket(ctx, email.From, string(model.CategoryComplaint), email.Body)
}

func (d *Dispatcher) handleInquiry(ctx context.Context, email model.Email) error {
	return d.tickets.CreateSupportTicket(ctx, email.From, email.Body)
}

func (d *Dispatcher) handleSupportRequest(ctx context.Context, email model.Email) error {
	return d.tickets.CreateSupportTicket(ctx, email.From, email.Body)
}

func (d *Dispatcher) handleFeedback(ctx context.Context, email model.Email) error {
	return d.feedback.LogFeedback(ctx, email.From, email.Body)
}

func (d *Dispatcher) handleOther(ctx context.Context, email model.Email) error {
	logger.WithTrace(ctx, d.logger).Info("Handled email", zap.String("email_id", email.ID))
	return nil
}
