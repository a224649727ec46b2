package model

// Email is an inbound support email. It is never mutated once built.
type Email struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"` // ISO-8601
}
