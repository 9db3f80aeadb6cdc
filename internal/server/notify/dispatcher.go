package notify

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/logging"
	"github.com/sethvargo/go-retry"
)

// ResultRecorder observes delivery outcomes ("sent", "failed", "dropped", "skipped").
type ResultRecorder interface {
	Notification(result string)
}

// DispatcherOptions sizes the queue and the per-email retry budget.
type DispatcherOptions struct {
	QueueSize  int
	MaxRetries int
	RetryDelay time.Duration
}

// Dispatcher is a bounded in-process email queue with one worker.
type Dispatcher struct {
	mailer   Mailer
	logger   logging.Logger
	recorder ResultRecorder
	opts     DispatcherOptions
	queue    chan Email
}

func NewDispatcher(m Mailer, opts DispatcherOptions, logger logging.Logger, recorder ResultRecorder) *Dispatcher {
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 100 * time.Millisecond
	}
	return &Dispatcher{
		mailer:   m,
		logger:   logger.With("module", "notify"),
		recorder: recorder,
		opts:     opts,
		queue:    make(chan Email, opts.QueueSize),
	}
}

// Enqueue schedules e for delivery without blocking. It reports false when
// the queue is full and the email was dropped.
func (d *Dispatcher) Enqueue(ctx context.Context, e Email) bool {
	select {
	case d.queue <- e:
		return true
	default:
		d.logger.Warn(ctx, "notification queue full, dropping email", "to", e.To)
		d.record("dropped")
		return false
	}
}

// Run consumes the queue until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info(ctx, "notification worker started", "queue_size", d.opts.QueueSize)

	for {
		select {
		case <-ctx.Done():
			if n := len(d.queue); n > 0 {
				d.logger.Warn(context.Background(), "notification worker stopped with pending emails", "pending", n)
			}
			return nil
		case e := <-d.queue:
			d.deliver(ctx, e)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, e Email) {
	attempt := 0
	b := retry.WithMaxRetries(uint64(d.opts.MaxRetries), retry.NewConstant(d.opts.RetryDelay))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := d.mailer.Send(ctx, e)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotConfigured) {
			return err
		}
		d.logger.Warn(ctx, "notification delivery failed", "to", e.To, "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})

	switch {
	case err == nil:
		d.logger.Debug(ctx, "notification sent", "to", e.To, "attempts", attempt)
		d.record("sent")
	case errors.Is(err, ErrNotConfigured):
		d.record("skipped")
	default:
		d.logger.Error(ctx, "notification delivery gave up", "to", e.To, "attempts", attempt, "error", err)
		d.record("failed")
	}
}

func (d *Dispatcher) record(result string) {
	if d.recorder != nil {
		d.recorder.Notification(result)
	}
}
