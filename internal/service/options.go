package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type options struct {
	logger   *zap.Logger
	metrics  *Metrics
	observer UseCaseObserver
	now      func() time.Time
}

// Option configures the ambient collaborators of a service.
type Option func(*options)

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithObserver sets the use-case observer.
func WithObserver(obs UseCaseObserver) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   zap.NewNop(),
		observer: NoopUseCaseObserver{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// degrade logs and counts a store failure that is being answered with a
// default value.
func (o options) degrade(op, userID string, err error) {
	o.logger.Warn("record store degraded",
		zap.String("op", op),
		zap.String("user_id", userID),
		zap.Error(err),
	)
	o.metrics.recordDegraded(op)
}

// observe emits one use-case event covering the time since startedAt.
func (o options) observe(ctx context.Context, name string, startedAt time.Time, err error, fields map[string]any) {
	o.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}
