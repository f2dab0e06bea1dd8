// internal/events/dispatcher.go
package events

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	apperrors "activity-signup/internal/common/errors"
	"activity-signup/internal/common/logger"
	"activity-signup/internal/common/metrics"
)

// Config tunes the worker pool and the per-sink retry policy.
// QueueSize is the capacity of each worker's queue.
type Config struct {
	Workers      int
	QueueSize    int
	MaxRetries   int
	RetryBackoff time.Duration
	Timeout      time.Duration
}

// Dispatcher delivers events to every sink on a fixed pool of workers.
// Events for one activity always go to the same worker, so sinks see them in
// publish order. Publish never blocks; a full queue drops the event.
type Dispatcher struct {
	config *Config
	sinks  []Sink
	logger logger.Logger

	mu     sync.RWMutex
	closed bool
	queues []chan Event
	wg     sync.WaitGroup

	// ctx bounds in-flight deliveries and retry sleeps; Close cancels it
	// when its own deadline passes.
	ctx    context.Context
	cancel context.CancelFunc

	sleep func(ctx context.Context, d time.Duration) error
}

func NewDispatcher(config *Config, sinks []Sink, log logger.Logger) *Dispatcher {
	cfg := *config
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		config: &cfg,
		sinks:  sinks,
		logger: log.WithFields(map[string]interface{}{"component": "events"}),
		queues: make([]chan Event, cfg.Workers),
		ctx:    ctx,
		cancel: cancel,
		sleep:  sleepContext,
	}

	for i := range d.queues {
		d.queues[i] = make(chan Event, cfg.QueueSize)
		d.wg.Add(1)
		go d.run(i)
	}

	names := make([]string, len(sinks))
	for i, s := range sinks {
		names[i] = s.Name()
	}
	d.logger.Info("event dispatcher started", map[string]interface{}{
		"workers":   cfg.Workers,
		"queueSize": cfg.QueueSize,
		"sinks":     names,
	})
	return d
}

// Publish enqueues evt on its activity's worker. It is safe to call after
// Close; the event is dropped.
func (d *Dispatcher) Publish(_ context.Context, evt Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(evt, "dispatcher closed")
		return
	}

	select {
	case d.queues[d.shard(evt.Activity)] <- evt:
		metrics.EventQueueDepth.Set(float64(d.depth()))
	default:
		d.drop(evt, "queue full")
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
// If ctx expires first, in-flight deliveries are cancelled.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, q := range d.queues {
			close(q)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		d.logger.Info("event dispatcher drained", nil)
		return nil
	case <-ctx.Done():
		d.cancel()
		return fmt.Errorf("event dispatcher drain: %w", ctx.Err())
	}
}

func (d *Dispatcher) shard(activity string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(activity))
	return int(h.Sum32() % uint32(len(d.queues)))
}

func (d *Dispatcher) depth() int {
	n := 0
	for _, q := range d.queues {
		n += len(q)
	}
	return n
}

func (d *Dispatcher) run(worker int) {
	defer d.wg.Done()
	for evt := range d.queues[worker] {
		metrics.EventQueueDepth.Set(float64(d.depth()))
		for _, sink := range d.sinks {
			d.deliver(worker, sink, evt)
		}
	}
}

func (d *Dispatcher) deliver(worker int, sink Sink, evt Event) {
	err := d.retryWithBackoff(func() error {
		ctx, cancel := context.WithTimeout(d.ctx, d.config.Timeout)
		defer cancel()
		return sink.Deliver(ctx, evt)
	}, sink.Name(), evt)

	if err != nil {
		metrics.EventsFailed.WithLabelValues(sink.Name(), string(evt.Type)).Inc()
		stdErr := apperrors.NewEventDeliveryFailedError(sink.Name(), err)
		d.logger.Error("event delivery failed", map[string]interface{}{
			"worker":    worker,
			"sink":      sink.Name(),
			"eventId":   evt.ID,
			"eventType": string(evt.Type),
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		return
	}

	metrics.EventsDelivered.WithLabelValues(sink.Name(), string(evt.Type)).Inc()
	d.logger.Debug("event delivered", map[string]interface{}{
		"worker":    worker,
		"sink":      sink.Name(),
		"eventId":   evt.ID,
		"eventType": string(evt.Type),
	})
}

// retryWithBackoff runs operation up to MaxRetries+1 times, doubling the delay each time.
// A StandardError with a non-retryable code stops it after the first failure.
func (d *Dispatcher) retryWithBackoff(operation func() error, sinkName string, evt Event) error {
	var err error
	delay := d.config.RetryBackoff
	attempts := d.config.MaxRetries + 1

	for i := 0; i < attempts; i++ {
		err = operation()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return fmt.Errorf("%s failed permanently: %w", sinkName, err)
		}

		if i < attempts-1 {
			d.logger.Warn("event delivery failed, retrying", map[string]interface{}{
				"sink":        sinkName,
				"eventId":     evt.ID,
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  d.config.MaxRetries,
				"nextRetryIn": delay.String(),
			})
			if sleepErr := d.sleep(d.ctx, delay); sleepErr != nil {
				return sleepErr
			}
			if ctxErr := d.ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%s: %w", sinkName, ctxErr)
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", sinkName, attempts, err)
}

// retryable treats plain errors as transient.
func retryable(err error) bool {
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return apperrors.IsRetryableErrorCode(stdErr.Code)
	}
	return true
}

func (d *Dispatcher) drop(evt Event, reason string) {
	metrics.EventsDropped.Inc()
	d.logger.Warn("event dropped", map[string]interface{}{
		"eventId":   evt.ID,
		"eventType": string(evt.Type),
		"activity":  evt.Activity,
		"reason":    reason,
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
