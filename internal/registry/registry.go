// internal/registry/registry.go
package registry

import (
	"context"
	"strings"
	"sync"
	"time"

	apperrors "activity-signup/internal/common/errors"
	"activity-signup/internal/common/logger"
	"activity-signup/internal/common/metrics"
	"activity-signup/internal/events"
	"activity-signup/internal/models"
	seed "activity-signup/pkg/registry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "activity-signup/internal/registry"

// Sentinels for errors.Is. Returned errors carry the activity and email in Details.
var (
	ErrActivityNotFound = &apperrors.StandardError{Code: apperrors.ErrCodeActivityNotFound}
	ErrAlreadySignedUp  = &apperrors.StandardError{Code: apperrors.ErrCodeAlreadySignedUp}
	ErrNotSignedUp      = &apperrors.StandardError{Code: apperrors.ErrCodeNotSignedUp}
	ErrEmailRequired    = &apperrors.StandardError{Code: apperrors.ErrCodeEmailRequired}
)

// Publisher receives an event after every successful mutation. Publish is
// called with the registry lock held and must not block.
type Publisher interface {
	Publish(ctx context.Context, evt events.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, events.Event) {}

// Registry is the in-memory set of activities. The activity set is fixed at
// construction; only participant lists change.
type Registry struct {
	mu         sync.RWMutex
	activities map[string]*models.Activity
	order      []string

	publisher Publisher
	logger    logger.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// New builds a registry from a seed document. A nil publisher discards events.
func New(doc *seed.ActivityRegistry, publisher Publisher, log logger.Logger) *Registry {
	if publisher == nil {
		publisher = noopPublisher{}
	}

	r := &Registry{
		activities: make(map[string]*models.Activity, len(doc.Activities)),
		order:      make([]string, 0, len(doc.Activities)),
		publisher:  publisher,
		logger:     log.WithFields(map[string]interface{}{"component": "registry"}),
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
	}

	for _, a := range doc.Activities {
		participants := make([]string, len(a.Participants))
		copy(participants, a.Participants)
		r.order = append(r.order, a.Name)
		r.activities[a.Name] = &models.Activity{
			Name:            a.Name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    participants,
		}
		metrics.RegistryParticipants.WithLabelValues(a.Name).Set(float64(len(participants)))
	}

	r.logger.Info("registry initialized", map[string]interface{}{
		"activities": len(r.activities),
		"version":    doc.Version,
	})
	return r
}

// List returns a snapshot of every activity in seed order.
func (r *Registry) List() models.ActivityCatalog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := models.NewActivityCatalog(len(r.order))
	for _, name := range r.order {
		out.Add(name, r.activities[name].View())
	}
	return out
}

// Signup appends email to the activity's participants.
// Capacity is reported through max_participants but not enforced.
func (r *Registry) Signup(ctx context.Context, activity, email string) (*models.SignupResult, error) {
	ctx, span := r.startSpan(ctx, "registry.Signup", activity)
	defer span.End()

	if strings.TrimSpace(email) == "" {
		return nil, r.fail(span, apperrors.NewEmailRequiredError())
	}

	r.mu.Lock()
	a, ok := r.activities[activity]
	if !ok {
		r.mu.Unlock()
		return nil, r.fail(span, apperrors.NewActivityNotFoundError(activity))
	}
	if a.HasParticipant(email) {
		r.mu.Unlock()
		return nil, r.fail(span, apperrors.NewAlreadySignedUpError(activity, email))
	}
	a.Participants = append(a.Participants, email)
	count := len(a.Participants)
	r.publisher.Publish(ctx, events.New(events.TypeSignedUp, activity, email, r.now()))
	r.mu.Unlock()

	r.recordMutation(activity, events.TypeSignedUp, count)

	r.logger.Info("participant signed up", map[string]interface{}{
		"activity":     activity,
		"email":        email,
		"participants": count,
	})

	return &models.SignupResult{
		Message:  "Signed up " + email + " for " + activity,
		Activity: activity,
		Email:    email,
	}, nil
}

// RemoveParticipant removes email from the activity's participants.
func (r *Registry) RemoveParticipant(ctx context.Context, activity, email string) (*models.SignupResult, error) {
	ctx, span := r.startSpan(ctx, "registry.RemoveParticipant", activity)
	defer span.End()

	if strings.TrimSpace(email) == "" {
		return nil, r.fail(span, apperrors.NewEmailRequiredError())
	}

	r.mu.Lock()
	a, ok := r.activities[activity]
	if !ok {
		r.mu.Unlock()
		return nil, r.fail(span, apperrors.NewActivityNotFoundError(activity))
	}
	if !a.RemoveParticipant(email) {
		r.mu.Unlock()
		return nil, r.fail(span, apperrors.NewNotSignedUpError(activity, email))
	}
	count := len(a.Participants)
	r.publisher.Publish(ctx, events.New(events.TypeRemoved, activity, email, r.now()))
	r.mu.Unlock()

	r.recordMutation(activity, events.TypeRemoved, count)

	r.logger.Info("participant removed", map[string]interface{}{
		"activity":     activity,
		"email":        email,
		"participants": count,
	})

	return &models.SignupResult{
		Message:  "Removed " + email + " from " + activity,
		Activity: activity,
		Email:    email,
	}, nil
}

func (r *Registry) startSpan(ctx context.Context, name, activity string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("activity.name", activity)))
}

func (r *Registry) fail(span trace.Span, err *apperrors.StandardError) error {
	span.SetStatus(codes.Error, err.Message)
	span.SetAttributes(attribute.String("error.code", string(err.Code)))
	return err
}

func (r *Registry) recordMutation(activity string, evtType events.Type, count int) {
	metrics.RegistryMutations.WithLabelValues(activity, string(evtType)).Inc()
	metrics.RegistryParticipants.WithLabelValues(activity).Set(float64(count))
}
