package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "activity-signup/internal/common/errors"
	"activity-signup/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	name string
	mu   sync.Mutex
	got  []Event
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, evt Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, evt)
	return nil
}

func (s *recordingSink) events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.got))
	copy(out, s.got)
	return out
}

func testConfig() *Config {
	return &Config{Workers: 2, QueueSize: 16, MaxRetries: 2, Timeout: time.Second}
}

func TestDispatcher_DeliversToEverySink(t *testing.T) {
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}
	d := NewDispatcher(testConfig(), []Sink{a, b}, logger.NewTestLogger(t))

	evt := New(TypeSignedUp, "Chess Club", "emma@mergington.edu", time.Now())
	d.Publish(context.Background(), evt)
	require.NoError(t, d.Close(context.Background()))

	for _, s := range []*recordingSink{a, b} {
		got := s.events()
		require.Len(t, got, 1, "sink %s", s.name)
		assert.Equal(t, evt.ID, got[0].ID)
		assert.Equal(t, TypeSignedUp, got[0].Type)
	}
}

func TestDispatcher_RetriesUntilSuccess(t *testing.T) {
	var calls int32
	flaky := SinkFunc{SinkName: "flaky", Fn: func(context.Context, Event) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("temporarily unavailable")
		}
		return nil
	}}

	d := NewDispatcher(testConfig(), []Sink{flaky}, logger.NewTestLogger(t))
	d.Publish(context.Background(), New(TypeRemoved, "Tennis Club", "ava@mergington.edu", time.Now()))
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDispatcher_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	broken := SinkFunc{SinkName: "broken", Fn: func(context.Context, Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("connection refused")
	}}
	healthy := &recordingSink{name: "healthy"}

	d := NewDispatcher(testConfig(), []Sink{broken, healthy}, logger.NewTestLogger(t))
	d.Publish(context.Background(), New(TypeSignedUp, "Chess Club", "x@mergington.edu", time.Now()))
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Len(t, healthy.events(), 1, "a failing sink must not starve the others")
}

func TestDispatcher_PreservesOrderPerActivity(t *testing.T) {
	var mu sync.Mutex
	var got []Type
	slowSignup := SinkFunc{SinkName: "slow", Fn: func(_ context.Context, evt Event) error {
		if evt.Type == TypeSignedUp {
			time.Sleep(50 * time.Millisecond)
		}
		mu.Lock()
		got = append(got, evt.Type)
		mu.Unlock()
		return nil
	}}

	d := NewDispatcher(&Config{Workers: 4, QueueSize: 16, Timeout: time.Second}, []Sink{slowSignup}, logger.NewTestLogger(t))
	d.Publish(context.Background(), New(TypeSignedUp, "Chess Club", "a@mergington.edu", time.Now()))
	d.Publish(context.Background(), New(TypeRemoved, "Chess Club", "a@mergington.edu", time.Now()))
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, []Type{TypeSignedUp, TypeRemoved}, got)
}

func TestDispatcher_ShardIsStablePerActivity(t *testing.T) {
	d := NewDispatcher(&Config{Workers: 8}, nil, logger.NewNoOpLogger())
	defer d.Close(context.Background())

	for _, name := range []string{"Chess Club", "Basketball Team", "Tennis Club", "Math Olympiad"} {
		first := d.shard(name)
		assert.GreaterOrEqual(t, first, 0)
		assert.Less(t, first, 8)
		assert.Equal(t, first, d.shard(name), name)
	}
}

func TestDispatcher_StopsOnNonRetryableError(t *testing.T) {
	var calls int32
	bad := SinkFunc{SinkName: "bad", Fn: func(context.Context, Event) error {
		atomic.AddInt32(&calls, 1)
		return apperrors.NewInternalError(errors.New("unencodable payload"))
	}}

	d := NewDispatcher(testConfig(), []Sink{bad}, logger.NewTestLogger(t))
	d.Publish(context.Background(), New(TypeSignedUp, "Chess Club", "x@mergington.edu", time.Now()))
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var delivered int32
	blocking := SinkFunc{SinkName: "blocking", Fn: func(context.Context, Event) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		atomic.AddInt32(&delivered, 1)
		return nil
	}}

	d := NewDispatcher(&Config{Workers: 1, QueueSize: 1, Timeout: time.Second}, []Sink{blocking}, logger.NewTestLogger(t))

	d.Publish(context.Background(), New(TypeSignedUp, "A", "1@x.y", time.Now()))
	<-started
	d.Publish(context.Background(), New(TypeSignedUp, "A", "2@x.y", time.Now()))
	d.Publish(context.Background(), New(TypeSignedUp, "A", "3@x.y", time.Now()))

	close(release)
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, int32(2), atomic.LoadInt32(&delivered))
}

func TestDispatcher_PublishAfterClose(t *testing.T) {
	sink := &recordingSink{name: "late"}
	d := NewDispatcher(testConfig(), []Sink{sink}, logger.NewTestLogger(t))
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	assert.NotPanics(t, func() {
		d.Publish(context.Background(), New(TypeSignedUp, "A", "a@b.c", time.Now()))
	})
	assert.Empty(t, sink.events())
}

func TestDispatcher_CloseHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	stuck := SinkFunc{SinkName: "stuck", Fn: func(context.Context, Event) error {
		<-release
		return nil
	}}

	d := NewDispatcher(testConfig(), []Sink{stuck}, logger.NewNoOpLogger())
	d.Publish(context.Background(), New(TypeSignedUp, "A", "a@b.c", time.Now()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := d.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDispatcher_CloseCancelsInFlightDelivery(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan error, 1)
	waiting := SinkFunc{SinkName: "waiting", Fn: func(ctx context.Context, _ Event) error {
		close(started)
		<-ctx.Done()
		cancelled <- ctx.Err()
		return ctx.Err()
	}}

	d := NewDispatcher(&Config{Workers: 1, QueueSize: 1, MaxRetries: 5, RetryBackoff: time.Minute, Timeout: time.Minute},
		[]Sink{waiting}, logger.NewTestLogger(t))
	d.Publish(context.Background(), New(TypeSignedUp, "A", "a@b.c", time.Now()))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)

	select {
	case err := <-cancelled:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("delivery was not cancelled")
	}

	drained := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("worker kept retrying after close")
	}
}

func TestNewDispatcher_ClampsConfig(t *testing.T) {
	d := NewDispatcher(&Config{}, nil, logger.NewNoOpLogger())
	defer d.Close(context.Background())

	assert.Equal(t, 1, d.config.Workers)
	assert.Equal(t, 1, d.config.QueueSize)
	assert.Equal(t, 3*time.Second, d.config.Timeout)
}

func TestEvent_Payload(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	evt := New(TypeSignedUp, "Chess Club", "emma@mergington.edu", at)

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, time.UTC, evt.OccurredAt.Location())

	payload, err := evt.Payload()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "`+evt.ID+`",
		"type": "participant.signed_up",
		"activity": "Chess Club",
		"email": "emma@mergington.edu",
		"occurredAt": "2026-03-01T17:00:00Z"
	}`, string(payload))
}
