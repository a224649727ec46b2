package service

import (
	"context"

	"go.uber.org/zap"

	"mailtriage/internal/model"
	"mailtriage/internal/validate"
)

// Processor handles one email. *Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, email model.Email) model.Outcome
}

// OutcomeRecorder persists outcomes as they are produced.
type OutcomeRecorder interface {
	Save(ctx context.Context, outcome model.Outcome) error
}

type BatchOption func(*BatchRunner)

// WithStrictPrecheck makes the first invalid email abort the whole batch
// instead of producing a failed outcome.
func WithStrictPrecheck() BatchOption {
	return func(r *BatchRunner) { r.strict = true }
}

// WithRecorder saves every outcome. Save errors are logged and do not
// change the outcome.
func WithRecorder(rec OutcomeRecorder) BatchOption {
	return func(r *BatchRunner) { r.recorder = rec }
}

type BatchRunner struct {
	processor Processor
	strict    bool
	recorder  OutcomeRecorder
	logger    *zap.Logger
}

func NewBatchRunner(processor Processor, logger *zap.Logger, opts ...BatchOption) *BatchRunner {
	r := &BatchRunner{processor: processor, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes emails sequentially in input order and returns one outcome
// per email. An error is returned only in strict mode (the offending
// *validate.ValidationError) or when ctx is done; the outcomes gathered so
// far are returned alongside it.
func (r *BatchRunner) Run(ctx context.Context, emails []model.Email) ([]model.Outcome, error) {
	outcomes := make([]model.Outcome, 0, len(emails))

	for _, email := range emails {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		r.logger.Info("Validating input data", zap.String("email_id", email.ID))
		if err := validate.Email(email); err != nil {
			if r.strict {
				r.logger.Error("Batch aborted on invalid email",
					zap.String("email_id", email.ID),
					zap.Error(err),
				)
				return outcomes, err
			}
			r.logger.Warn("Invalid email skipped",
				zap.String("email_id", email.ID),
				zap.Error(err),
			)
			outcomes = append(outcomes, r.record(ctx, model.Failed(email, &StageError{Stage: StageValidate, Err: err})))
			continue
		}

		outcomes = append(outcomes, r.record(ctx, r.processor.Process(ctx, email)))
	}

	return outcomes, nil
}

func (r *BatchRunner) record(ctx context.Context, outcome model.Outcome) model.Outcome {
	if r.recorder == nil {
		return outcome
	}
	if err := r.recorder.Save(ctx, outcome); err != nil {
		r.logger.Error("Failed to save outcome",
			zap.String("email_id", outcome.ID),
			zap.Error(err),
		)
	}
	return outcome
}
