package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"mailtriage/internal/model"
	"mailtriage/internal/validate"
)

type memoryRecorder struct {
	saved []model.Outcome
	err   error
}

func (r *memoryRecorder) Save(_ context.Context, o model.Outcome) error {
	r.saved = append(r.saved, o)
	return r.err
}

func mixedBatch() []model.Email {
	bad := sampleEmail("003", "bad sender")
	bad.From = "someone@example.org"
	missing := sampleEmail("005", "missing body")
	missing.Body = ""

	return []model.Email{
		sampleEmail("001", "Broken product received"),
		sampleEmail("002", "classify fails"),
		bad,
		sampleEmail("004", "Amazing customer support"),
		missing,
	}
}

func TestBatchRunner_OrderAndFailureCount(t *testing.T) {
	gen := &fakeGenerator{
		label:    "inquiry",
		response: "reply",
		labels: map[string]string{
			"Broken product received":  "complaint",
			"Amazing customer support": "feedback",
		},
	}
	log := zaptest.NewLogger(t)
	p := newTestPipeline(t, gen, &fakeServices{})
	// classification fails for email 002 only
	failing := processorFunc(func(ctx context.Context, e model.Email) model.Outcome {
		if e.ID == "002" {
			return model.Failed(e, &StageError{Stage: StageClassify, Err: ErrClassificationFailed})
		}
		return p.Process(ctx, e)
	})

	emails := mixedBatch()
	outcomes, err := NewBatchRunner(failing, log).Run(context.Background(), emails)
	require.NoError(t, err)
	require.Len(t, outcomes, len(emails))

	failed := 0
	for i, o := range outcomes {
		assert.Equal(t, emails[i].ID, o.ID, "row %d out of order", i)
		if !o.Success {
			failed++
			assert.Empty(t, o.Category)
			assert.Empty(t, o.Response)
		}
	}
	assert.Equal(t, 3, failed)
	assert.Equal(t, model.CategoryComplaint, outcomes[0].Category)
	assert.Equal(t, model.CategoryFeedback, outcomes[3].Category)

	// invalid emails never reach the model
	assert.Len(t, gen.classifyCalls, 2)
}

func TestBatchRunner_StrictPrecheckAborts(t *testing.T) {
	gen := &fakeGenerator{label: "inquiry", response: "reply"}
	p := newTestPipeline(t, gen, &fakeServices{})

	outcomes, err := NewBatchRunner(p, zaptest.NewLogger(t), WithStrictPrecheck()).Run(context.Background(), mixedBatch())
	require.Error(t, err)
	assert.ErrorIs(t, err, validate.ErrInvalidValue)

	var verr *validate.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "from", verr.Field)

	assert.Len(t, outcomes, 2)
	assert.Len(t, gen.classifyCalls, 2)
}

func TestBatchRunner_Recorder(t *testing.T) {
	gen := &fakeGenerator{label: "other", response: "ok"}
	rec := &memoryRecorder{err: errors.New("db down")}
	p := newTestPipeline(t, gen, &fakeServices{})

	emails := mixedBatch()
	outcomes, err := NewBatchRunner(p, zaptest.NewLogger(t), WithRecorder(rec)).Run(context.Background(), emails)
	require.NoError(t, err)
	assert.Equal(t, outcomes, rec.saved)
	assert.True(t, outcomes[0].Success, "save errors must not change the outcome")
}

func TestBatchRunner_StopsWhenContextDone(t *testing.T) {
	gen := &fakeGenerator{label: "other", response: "ok"}
	p := newTestPipeline(t, gen, &fakeServices{})

	ctx, cancel := context.WithCancel(context.Background())
	stopAfterFirst := processorFunc(func(ctx context.Context, e model.Email) model.Outcome {
		defer cancel()
		return p.Process(ctx, e)
	})

	outcomes, err := NewBatchRunner(stopAfterFirst, zaptest.NewLogger(t)).Run(ctx, mixedBatch())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, outcomes, 1)
}

func TestBatchRunner_Empty(t *testing.T) {
	outcomes, err := NewBatchRunner(newTestPipeline(t, &fakeGenerator{}, &fakeServices{}), zaptest.NewLogger(t)).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

type processorFunc func(ctx context.Context, e model.Email) model.Outcome

func (f processorFunc) Process(ctx context.Context, e model.Email) model.Outcome { return f(ctx, e) }
