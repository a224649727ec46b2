package mq

import "time"

const (
	RoutingEmailReceived = "email.received"
	RoutingEmailTriaged  = "email.triaged"
)

// EmailReceivedPayload 邮件收到事件的 payload，字段名与原始数据一致
type EmailReceivedPayload struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
	TraceID   string `json:"trace_id,omitempty"`
}

// EmailTriagedPayload is published once per processed email.
type EmailTriagedPayload struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Success   bool      `json:"success"`
	Category  string    `json:"category,omitempty"`
	Response  string    `json:"response,omitempty"`
	TriagedAt time.Time `json:"triaged_at"`
	TraceID   string    `json:"trace_id,omitempty"`
}
