// Package downstream holds the side-effecting collaborators the pipeline
// talks to after an email is classified: response delivery, ticketing and
// feedback logging.
package downstream

import "context"

type Delivery interface {
	SendComplaintResponse(ctx context.Context, to, body string) error
	SendStandardResponse(ctx context.Context, to, body string) error
}

type Ticketing interface {
	CreateUrgentTicket(ctx context.Context, sender, category, details string) error
	CreateSupportTicket(ctx context.Context, sender, details string) error
}

type FeedbackLog interface {
	LogFeedback(ctx context.Context, sender, feedback string) error
}

// Services bundles every downstream capability.
type Services interface {
	Delivery
	Ticketing
	FeedbackLog
}
