package service

import (
	"context"
	"time"
)

// Stage names the pipeline step an Event refers to.
type Stage string

// Pipeline stages, in processing order.
const (
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
	StageEvaluate Stage = "evaluate"
	StageEncode   Stage = "encode"
	StagePublish  Stage = "publish"
)

// Status is the outcome of a pipeline stage.
type Status string

// Pipeline outcomes.
const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Event describes how one inbound message left the pipeline: the last stage
// it reached and whether that stage succeeded. A fully processed message
// yields StagePublish with StatusOK.
//
// Events never carry request bodies or calculated amounts.
type Event struct {
	Topic     string
	RequestID string
	Stage     Stage
	Status    Status
	Err       error
	Duration  time.Duration
	At        time.Time
}

// Observer receives one Event per processed message. Observe runs on the
// delivery goroutine; a returned error is logged and otherwise ignored.
type Observer interface {
	Observe(ctx context.Context, e Event) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, e Event) error

// Observe calls f(ctx, e).
func (f ObserverFunc) Observe(ctx context.Context, e Event) error {
	return f(ctx, e)
}
