package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// Handler processes one task's payload. A nil return is success. Any
// other error is interpreted by its apperr.Kind: KindExpected is
// surfaced and not retried; KindRateLimited is retried after
// Error.RetryAfter; everything else is treated as UnexpectedError and
// retried with exponential backoff up to maxAttempts.
type Handler func(ctx context.Context, payload json.RawMessage) error

// FailureCallback is the single logging hook spec.md §4.7 requires for
// every terminal or surfaced task failure.
type FailureCallback func(taskID string, taskType Type, attempt int, err error)

// Enqueuer publishes typed tasks onto their topic and implements
// subscription.TaskEnqueuer.
type Enqueuer struct {
	bus *Bus
}

func NewEnqueuer(bus *Bus) *Enqueuer {
	return &Enqueuer{bus: bus}
}

// Enqueue publishes payload as a new task of type t. If taskID is empty
// one is generated, per spec.md §4.7's "optional caller-provided TaskId".
func (e *Enqueuer) Enqueue(ctx context.Context, t Type, taskID string, payload interface{}) (string, error) {
	if taskID == "" {
		taskID = uuid.NewString()
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", apperr.Unexpected("marshal task payload", err)
	}
	env := Envelope{TaskID: taskID, Type: t, Payload: raw}
	return taskID, e.publish(ctx, env)
}

func (e *Enqueuer) publish(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return apperr.Unexpected("marshal task envelope", err)
	}
	w := e.bus.Writer(env.Type)
	defer w.Close()
	if err := w.WriteMessages(ctx, kafka.Message{Key: []byte(env.TaskID), Value: body}); err != nil {
		return apperr.Unexpected("publish task", err)
	}
	return nil
}

// EnqueueFetchAndSubscribe implements subscription.TaskEnqueuer.
func (e *Enqueuer) EnqueueFetchAndSubscribe(ctx context.Context, externalID string, subscriberID uuid.UUID) (string, error) {
	taskID := uuid.NewString()
	payload := FetchAndSubscribeToLocationPayload{ExternalID: externalID, SubscriberID: subscriberID, TaskID: taskID}
	return e.Enqueue(ctx, TypeFetchAndSubscribeToLocation, taskID, payload)
}

// Consumer runs one worker pool's processing loop over a single task
// type's topic, with acks_late semantics: the Kafka offset is committed
// only after the handler — and, for a retried outcome, the requeue — has
// been accounted for.
type Consumer struct {
	taskType Type
	reader   *kafka.Reader
	enqueuer *Enqueuer
	handler  Handler
	onFail   FailureCallback
	logger   zerolog.Logger
}

func NewConsumer(bus *Bus, t Type, groupID string, enqueuer *Enqueuer, handler Handler, onFail FailureCallback, logger zerolog.Logger) *Consumer {
	return &Consumer{
		taskType: t,
		reader:   bus.Reader(t, groupID),
		enqueuer: enqueuer,
		handler:  handler,
		onFail:   onFail,
		logger:   logger,
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

// Run fetches and processes messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return apperr.Unexpected("fetch task message", err)
		}
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		c.onFail("", c.taskType, 0, apperr.Unexpected("decode task envelope", err))
		c.commit(ctx, msg)
		return
	}

	err := c.handler(ctx, env.Payload)
	switch {
	case err == nil:
		c.commit(ctx, msg)

	case apperr.KindOf(err) == apperr.KindExpected:
		c.onFail(env.TaskID, env.Type, env.Attempt, err)
		c.commit(ctx, msg)

	case apperr.KindOf(err) == apperr.KindRateLimited:
		c.requeueAfter(ctx, env, retryAfterOf(err))
		c.commit(ctx, msg)

	default:
		if env.Attempt+1 >= maxAttempts {
			c.onFail(env.TaskID, env.Type, env.Attempt, err)
			c.commit(ctx, msg)
			return
		}
		env.Attempt++
		c.requeueAfter(ctx, env, backoff(env.Attempt))
		c.commit(ctx, msg)
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error().Err(err).Msg("failed to commit task offset")
	}
}

// requeueAfter republishes env onto its own topic once delay elapses.
// Kafka has no native delayed-delivery primitive, so the wait happens in
// this worker process; the original message is committed immediately,
// matching the deferred-commit acks_late contract for this delivery.
func (c *Consumer) requeueAfter(ctx context.Context, env Envelope, delay time.Duration) {
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		}
		if err := c.enqueuer.publish(context.Background(), env); err != nil {
			c.logger.Error().Err(err).Str("task_id", env.TaskID).Msg("failed to requeue task")
		}
	}()
}
