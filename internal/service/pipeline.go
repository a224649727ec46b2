package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mailtriage/internal/downstream"
	"mailtriage/internal/model"
	"mailtriage/internal/validate"
	"mailtriage/pkg/logger"
	"mailtriage/pkg/metrics"
	"mailtriage/pkg/trace"
)

const (
	ChannelComplaint = "complaint"
	ChannelStandard  = "standard"
)

// DeliveryChannel picks the delivery path: complaints have their own,
// every other category shares the standard one.
func DeliveryChannel(category model.Category) string {
	if category == model.CategoryComplaint {
		return ChannelComplaint
	}
	return ChannelStandard
}

// Pipeline runs one email through validation, classification, response
// generation, delivery and handler dispatch.
type Pipeline struct {
	classifier *Classifier
	responder  *Responder
	delivery   downstream.Delivery
	dispatcher *Dispatcher
	logger     *zap.Logger
}

func NewPipeline(
	classifier *Classifier,
	responder *Responder,
	delivery downstream.Delivery,
	dispatcher *Dispatcher,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		responder:  responder,
		delivery:   delivery,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Process never returns an error: every failure, panics included, becomes
// a failed Outcome for this email only.
func (p *Pipeline) Process(ctx context.Context, email model.Email) (out model.Outcome) {
	ctx = trace.Ensure(ctx)
	log := logger.WithTrace(ctx, p.logger).With(zap.String("email_id", email.ID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic recovered in pipeline", zap.Any("panic", r))
			metrics.IncrementEmailTriaged("failed", "")
			out = model.Failed(email, fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()

	log.Info("Processing email")

	category, response, err := p.run(ctx, email)
	if err != nil {
		log.Warn("Email processing failed",
			zap.String("stage", FailedStage(err)),
			zap.Error(err),
		)
		metrics.IncrementEmailTriaged("failed", "")
		return model.Failed(email, err)
	}

	log.Info("Email processed successfully", zap.String("category", category.String()))
	metrics.IncrementEmailTriaged("success", category.String())
	return model.Succeeded(email, category, response)
}

func (p *Pipeline) run(ctx context.Context, email model.Email) (model.Category, string, error) {
	// Step 1: validate
	if err := validate.Email(email); err != nil {
		return "", "", &StageError{Stage: StageValidate, Err: err}
	}

	// Step 2: classify
	category, err := p.classifier.Classify(ctx, email)
	if err != nil {
		return "", "", &StageError{Stage: StageClassify, Err: err}
	}

	// Step 3: generate response
	response, err := p.responder.GenerateResponse(ctx, email, category)
	if err != nil {
		return "", "", &StageError{Stage: StageRespond, Err: err}
	}

	// Step 4: deliver（complaint 走单独通道）
	if err := p.deliver(ctx, email, category, response); err != nil {
		return "", "", &StageError{Stage: StageDeliver, Err: err}
	}

	// Step 5: category handler
	if err := p.dispatcher.Dispatch(ctx, email, category); err != nil {
		return "", "", &StageError{Stage: StageDispatch, Err: err}
	}

	return category, response, nil
}

func (p *Pipeline) deliver(ctx context.Context, email model.Email, category model.Category, response string) error {
	channel := DeliveryChannel(category)

	var err error
	if channel == ChannelComplaint {
		err = p.delivery.SendComplaintResponse(ctx, email.From, response)
	} else {
		err = p.delivery.SendStandardResponse(ctx, email.From, response)
	}

	if err != nil {
		metrics.IncrementResponseDelivery(channel, "error")
		return fmt.Errorf("%w (%s): %w", ErrDeliveryFailed, channel, err)
	}
	metrics.IncrementResponseDelivery(channel, "success")
	return nil
}
