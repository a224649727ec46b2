package model

// Outcome is the per-email result of one pipeline run. Category and
// Response are set only when Success is true.
type Outcome struct {
	ID       string   `json:"id"`
	Sender   string   `json:"email_id"`
	Success  bool     `json:"success"`
	Category Category `json:"classification,omitempty"`
	Response string   `json:"response_sent,omitempty"`

	// Err is the reason of a failed run. It is not serialized.
	Err error `json:"-"`
}

func Succeeded(email Email, category Category, response string) Outcome {
	return Outcome{
		ID:       email.ID,
		Sender:   email.From,
		Success:  true,
		Category: category,
		Response: response,
	}
}

func Failed(email Email, err error) Outcome {
	return Outcome{
		ID:     email.ID,
		Sender: email.From,
		Err:    err,
	}
}
