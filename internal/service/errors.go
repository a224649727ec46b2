package service

import (
	"errors"
	"fmt"
)

var (
	ErrClassificationFailed = errors.New("classification failed")
	ErrResponseFailed       = errors.New("response generation failed")
	ErrDeliveryFailed       = errors.New("response delivery failed")
	ErrHandlerFailed        = errors.New("category handler failed")
	ErrPanic                = errors.New("pipeline panic")
)

// Pipeline stages, in execution order.
const (
	StageValidate = "validate"
	StageClassify = "classify"
	StageRespond  = "respond"
	StageDeliver  = "deliver"
	StageDispatch = "dispatch"
)

// StageError records which stage of one email's run failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FailedStage returns the stage recorded in err, or "" when err carries none.
func FailedStage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
