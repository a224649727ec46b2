package mq

import "time"

const (
	RoutingResponseComplaint = "response.complaint"
	RoutingResponseStandard  = "response.standard"
	RoutingTicketUrgent      = "ticket.urgent"
	RoutingTicketSupport     = "ticket.support"
	RoutingFeedbackLogged    = "feedback.logged"
)

type ResponseSendPayload struct {
	To        string    `json:"to"`
	Body      string    `json:"body"`
	Channel   string    `json:"channel"` // complaint / standard
	CreatedAt time.Time `json:"created_at"`
	TraceID   string    `json:"trace_id,omitempty"`
}

type TicketCreatedPayload struct {
	Sender    string    `json:"sender"`
	Priority  string    `json:"priority"` // URGENT / STANDARD
	Category  string    `json:"category,omitempty"`
	Context   string    `json:"context"`
	CreatedAt time.Time `json:"created_at"`
	TraceID   string    `json:"trace_id,omitempty"`
}

type FeedbackLoggedPayload struct {
	Sender    string    `json:"sender"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
	TraceID   string    `json:"trace_id,omitempty"`
}
