package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"mailtriage/internal/model"
)

func TestDispatcher_OneHandlerPerCategory(t *testing.T) {
	cases := []struct {
		category model.Category
		handler  string
		methods  []string
	}{
		{model.CategoryComplaint, HandlerUrgentTicket, []string{"CreateUrgentTicket"}},
		{model.CategoryInquiry, HandlerSupportTicket, []string{"CreateSupportTicket"}},
		{model.CategorySupportRequest, HandlerSupportTicket, []string{"CreateSupportTicket"}},
		{model.CategoryFeedback, HandlerFeedbackLog, []string{"LogFeedback"}},
		{model.CategoryOther, HandlerNone, []string{}},
		{model.Category("spam"), HandlerNone, []string{}},
	}

	for _, tc := range cases {
		t.Run(string(tc.category), func(t *testing.T) {
			svc := &fakeServices{}
			d := NewDispatcher(svc, svc, zaptest.NewLogger(t))

			email := sampleEmail("1", "s")
			require.NoError(t, d.Dispatch(context.Background(), email, tc.category))
			assert.Equal(t, tc.methods, svc.methods())
			assert.Equal(t, tc.handler, HandlerFor(tc.category))
		})
	}
}

func TestDispatcher_InquiryAndSupportRequestBehaveTheSame(t *testing.T) {
	email := sampleEmail("1", "s")

	inquiry := &fakeServices{}
	require.NoError(t, NewDispatcher(inquiry, inquiry, zaptest.NewLogger(t)).Dispatch(context.Background(), email, model.CategoryInquiry))

	support := &fakeServices{}
	require.NoError(t, NewDispatcher(support, support, zaptest.NewLogger(t)).Dispatch(context.Background(), email, model.CategorySupportRequest))

	assert.Equal(t, inquiry.calls, support.calls)
}

func TestDispatcher_ComplaintCarriesBody(t *testing.T) {
	svc := &fakeServices{}
	email := sampleEmail("1", "Broken")

	require.NoError(t, NewDispatcher(svc, svc, zaptest.NewLogger(t)).Dispatch(context.Background(), email, model.CategoryComplaint))
	require.Len(t, svc.calls, 1)
	assert.Equal(t, email.From, svc.calls[0].sender)
	assert.Equal(t, "complaint|"+email.Body, svc.calls[0].body)
}

func TestDispatcher_HandlerError(t *testing.T) {
	boom := errors.New("ticket system down")
	svc := &fakeServices{errs: map[string]error{"CreateSupportTicket": boom}}
	d := NewDispatcher(svc, svc, zaptest.NewLogger(t))

	err := d.Dispatch(context.Background(), sampleEmail("1", "s"), model.CategoryInquiry)
	assert.ErrorIs(t, err, ErrHandlerFailed)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), HandlerSupportTicket)
}
