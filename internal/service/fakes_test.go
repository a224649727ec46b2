package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"mailtriage/internal/llm"
	"mailtriage/internal/model"
)

const (
	testClassifyPrompt = "Classify the email into one category."
	testRespondPrompt  = "Write a helpful reply."
)

type generateCall struct {
	messages     []llm.Message
	maxNewTokens int
}

// fakeGenerator answers classification and response prompts separately.
type fakeGenerator struct {
	mu sync.Mutex

	label       string
	labelErr    error
	response    string
	responseErr error
	// labels overrides label per subject
	labels  map[string]string
	panicOn string

	classifyCalls []generateCall
	respondCalls  []generateCall
}

func (g *fakeGenerator) Generate(_ context.Context, msgs []llm.Message, maxNewTokens int) ([]llm.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	call := generateCall{messages: append([]llm.Message(nil), msgs...), maxNewTokens: maxNewTokens}
	user := msgs[len(msgs)-1].Content
	if g.panicOn != "" && strings.Contains(user, g.panicOn) {
		panic("generator exploded")
	}

	switch msgs[0].Content {
	case testClassifyPrompt:
		g.classifyCalls = append(g.classifyCalls, call)
		if g.labelErr != nil {
			return nil, g.labelErr
		}
		label := g.label
		for subject, l := range g.labels {
			if strings.Contains(user, "Subject: "+subject+",") {
				label = l
			}
		}
		return append(msgs, llm.Message{Role: llm.RoleAssistant, Content: label}), nil
	case testRespondPrompt:
		g.respondCalls = append(g.respondCalls, call)
		if g.responseErr != nil {
			return nil, g.responseErr
		}
		return append(msgs, llm.Message{Role: llm.RoleAssistant, Content: g.response}), nil
	}
	return nil, errors.New("unexpected system prompt")
}

type serviceCall struct {
	method string
	sender string
	body   string
}

// fakeServices records downstream calls; errs fails a method by name.
type fakeServices struct {
	calls []serviceCall
	errs  map[string]error
}

func (s *fakeServices) record(method, sender, body string) error {
	s.calls = append(s.calls, serviceCall{method: method, sender: sender, body: body})
	return s.errs[method]
}

func (s *fakeServices) SendComplaintResponse(_ context.Context, to, body string) error {
	return s.record("SendComplaintResponse", to, body)
}

func (s *fakeServices) SendStandardResponse(_ context.Context, to, body string) error {
	return s.record("SendStandardResponse", to, body)
}

func (s *fakeServices) CreateUrgentTicket(_ context.Context, sender, category, details string) error {
	return s.record("CreateUrgentTicket", sender, category+"|"+details)
}

func (s *fakeServices) CreateSupportTicket(_ context.Context, sender, details string) error {
	return s.record("CreateSupportTicket", sender, details)
}

func (s *fakeServices) LogFeedback(_ context.Context, sender, feedback string) error {
	return s.record("LogFeedback", sender, feedback)
}

func (s *fakeServices) methods() []string {
	out := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.method)
	}
	return out
}

func sampleEmail(id, subject string) model.Email {
	return model.Email{
		ID:        id,
		From:      "customer" + id + "@example.com",
		Subject:   subject,
		Body:      "Body of " + subject,
		Timestamp: "2024-03-15T10:30:00Z",
	}
}
