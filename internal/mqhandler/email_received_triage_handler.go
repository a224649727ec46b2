package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "mailtriage/contracts/mq"
	"mailtriage/internal/model"
	"mailtriage/internal/service"
	"mailtriage/pkg/logger"
	"mailtriage/pkg/mq"
	"mailtriage/pkg/trace"
	"mailtriage/pkg/util"
)

const (
	handlerName = "triage"
	maxRetries  = 5
)

type OutcomeStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, outcome model.Outcome) error
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Deduper interface {
	AcquireOnce(ctx context.Context, handler, emailID string) bool
	Release(ctx context.Context, handler, emailID string)
}

type RetryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// EmailReceivedTriageHandler runs one email.received event through the
// pipeline, stores the outcome and announces it as email.triaged.
type EmailReceivedTriageHandler struct {
	processor    service.Processor
	store        OutcomeStore
	publisher    Publisher
	deduper      Deduper
	retryCounter RetryCounter
	logger       *zap.Logger
	now          func() time.Time
}

func NewEmailReceivedTriageHandler(
	processor service.Processor,
	store OutcomeStore,
	publisher Publisher,
	deduper Deduper,
	retryCounter RetryCounter,
	logger *zap.Logger,
) *EmailReceivedTriageHandler {
	return &EmailReceivedTriageHandler{
		processor:    processor,
		store:        store,
		publisher:    publisher,
		deduper:      deduper,
		retryCounter: retryCounter,
		logger:       logger,
		now:          time.Now,
	}
}

// Handle returns nil to ack, mq.ErrPoison to dead-letter and any other
// error to requeue.
func (h *EmailReceivedTriageHandler) Handle(ctx context.Context, raw json.RawMessage) (err error) {
	defer h.recoverPanic(&err)

	// --------------------------
	// Step 1: decode payload
	// --------------------------
	var payload mqcontracts.EmailReceivedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Error("Invalid EmailReceivedPayload, sending to DLQ",
			zap.String("raw", string(raw)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: bad payload: %w", mq.ErrPoison, err)
	}

	if payload.TraceID != "" {
		ctx = trace.WithContext(ctx, payload.TraceID)
	}
	ctx = trace.Ensure(ctx)

	log := logger.WithTrace(ctx, h.logger).With(zap.String("email_id", payload.ID))
	log.Info("TriageHandler: received email")

	// --------------------------
	// Step 2: idempotency
	// --------------------------
	// 已有结果 → 跳过
	done, err := h.store.Exists(ctx, payload.ID)
	if err != nil {
		return h.handleInfraError(log, "Exists", err)
	}
	if done {
		log.Info("Email already triaged, skip")
		return nil
	}

	// Redis 去重（避免并发重复消费）
	if !h.deduper.AcquireOnce(ctx, handlerName, payload.ID) {
		return nil
	}

	retryKey := util.FormatRetryKey(handlerName, payload.ID)
	retryCount, err := h.retryCounter.IncrementAndGet(ctx, retryKey)
	if err != nil {
		// 无法计数就无法限制重试次数：按已耗尽处理，失败结果直接入库
		log.Warn("Retry counter unavailable, retries disabled", zap.Error(err))
		retryCount = maxRetries + 1
	}

	// --------------------------
	// Step 3: run pipeline
	// --------------------------
	email := model.Email{
		ID:        payload.ID,
		From:      payload.From,
		Subject:   payload.Subject,
		Body:      payload.Body,
		Timestamp: payload.Timestamp,
	}
	out := h.processor.Process(ctx, email)

	if !out.Success && h.shouldRetry(log, out.Err, retryCount) {
		h.deduper.Release(ctx, handlerName, payload.ID)
		return out.Err
	}

	// --------------------------
	// Step 4: store outcome
	// --------------------------
	if err := h.store.Save(ctx, out); err != nil {
		h.deduper.Release(ctx, handlerName, payload.ID)
		return h.handleInfraError(log, "Save", err)
	}

	// --------------------------
	// Step 5: announce
	// --------------------------
	triaged := mqcontracts.EmailTriagedPayload{
		ID:        out.ID,
		From:      out.Sender,
		Success:   out.Success,
		Category:  string(out.Category),
		Response:  out.Response,
		TriagedAt: h.now(),
		TraceID:   trace.FromContext(ctx),
	}
	if err := h.publisher.Publish(ctx, mqcontracts.RoutingEmailTriaged, triaged); err != nil {
		// 结果已入库，发布失败不重试
		log.Error("Failed to publish email.triaged", zap.Error(err))
	}

	if err := h.retryCounter.Reset(ctx, retryKey); err != nil {
		log.Warn("Failed to reset retry counter", zap.Error(err))
	}

	log.Info("Email triaged",
		zap.Bool("success", out.Success),
		zap.String("category", string(out.Category)),
	)
	return nil
}

// shouldRetry requeues failures that happened before any side effect and
// whose cause is transient.
func (h *EmailReceivedTriageHandler) shouldRetry(log *zap.Logger, err error, retryCount int64) bool {
	stage := service.FailedStage(err)
	if stage != service.StageClassify && stage != service.StageRespond {
		return false
	}

	retryable, errType := util.IsRetryableError(err)
	log.Warn("Pipeline failed",
		zap.String("stage", stage),
		zap.String("error_type", errType),
		zap.Bool("retryable", retryable),
		zap.Int64("retry", retryCount),
		zap.Error(err),
	)

	if retryable && !util.ShouldRetry(retryCount, maxRetries, retryable) {
		log.Warn("Max retries exceeded, storing failed outcome")
	}
	return util.ShouldRetry(retryCount, maxRetries, retryable)
}

func (h *EmailReceivedTriageHandler) handleInfraError(log *zap.Logger, op string, err error) error {
	retryable, errType := util.IsRetryableError(err)
	log.Error("Store error",
		zap.String("op", op),
		zap.String("error_type", errType),
		zap.Bool("retryable", retryable),
		zap.Error(err),
	)

	if retryable {
		return err // nack → 重试
	}
	return nil // ack → 吃掉
}

func (h *EmailReceivedTriageHandler) recoverPanic(err *error) {
	if r := recover(); r != nil {
		h.logger.Error("panic recovered in handler", zap.Any("panic", r))
		*err = fmt.Errorf("%w: panic: %v", mq.ErrPoison, r)
	}
}
