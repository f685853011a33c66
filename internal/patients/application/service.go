// Package application wraps the patient registry with the cross-cutting
// behaviour every front end shares: tracing, logging, lookup caching and
// change notifications.
package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/sprs/sprs/internal/cachemanager"
	"github.com/sprs/sprs/internal/log"
	"github.com/sprs/sprs/internal/patients/domain"
	"github.com/sprs/sprs/internal/pubsub"
	"github.com/sprs/sprs/internal/tracing"
)

// Operation names used for spans and log entries.
const (
	OpRegister   = "register"
	OpGet        = "get"
	OpUpdateName = "update_name"
	OpDelete     = "delete"
	OpList       = "list"
)

// Change is the payload of every registry event.
type Change struct {
	Record       domain.Record
	PreviousName string // set on updates only
}

// Service is the entry point front ends use to work with patients.
// Like the registry it wraps, it must be driven from one goroutine.
type Service struct {
	repo   domain.Repository
	tracer trace.Tracer
	events *pubsub.Broker[Change]
	cache  cachemanager.CacheManager[string, domain.Record]
	ttl    time.Duration
	lookup *cachemanager.ReadThroughCache[string, domain.Record, string]
}

// Option configures a Service.
type Option func(*Service)

// WithTracer sets the tracer used for operation spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithBroker publishes change events on b instead of a private broker.
func WithBroker(b *pubsub.Broker[Change]) Option {
	return func(s *Service) {
		if b != nil {
			s.events = b
		}
	}
}

// WithLookupCache serves Get through c, keeping entries for ttl.
func WithLookupCache(c cachemanager.CacheManager[string, domain.Record], ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

// NewService creates a Service over repo.
func NewService(repo domain.Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		tracer: noop.NewTracerProvider().Tracer("sprs"),
		events: pubsub.NewBroker[Change](),
		ttl:    cachemanager.DefaultExpiration,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lookup = cachemanager.NewReadThroughCache(s.cache, s.load, s.cache == nil)
	return s
}

func (s *Service) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String(tracing.AttrOperation, op))
	return s.tracer.Start(ctx, tracing.SpanPrefixPatients+op, trace.WithAttributes(attrs...))
}

// finish ends span and logs the outcome of op.
func (s *Service) finish(ctx context.Context, span trace.Span, op string, err error, fields ...any) {
	fields = append(fields, "op", op)
	if traceID := tracing.TraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	if err != nil {
		span.SetAttributes(attribute.String(tracing.AttrErrorType, errorType(err)))
		log.Warn(log.CatRegistry, "operation failed", append(fields, "error", err.Error())...)
	} else {
		log.Debug(log.CatRegistry, "operation succeeded", fields...)
	}
	tracing.End(span, err)
}

func errorType(err error) string {
	switch {
	case domain.IsInvalidArgument(err):
		return "invalid_argument"
	case domain.IsNotFound(err):
		return "not_found"
	default:
		return "internal"
	}
}

// Register stores a new patient and returns the allocated identifier.
func (s *Service) Register(ctx context.Context, name string) (string, error) {
	ctx, span := s.start(ctx, OpRegister)

	id, err := s.repo.Register(name)
	if err != nil {
		s.finish(ctx, span, OpRegister, err)
		return "", err
	}

	span.SetAttributes(attribute.String(tracing.AttrPatientID, id))
	s.events.Publish(pubsub.CreatedEvent, Change{Record: domain.NewRecord(id, name)})
	s.finish(ctx, span, OpRegister, nil, "id", id)
	return id, nil
}

// Get returns the patient stored under id.
func (s *Service) Get(ctx context.Context, id string) (domain.Record, error) {
	ctx, span := s.start(ctx, OpGet, attribute.String(tracing.AttrPatientID, id))
	if !s.lookup.Skipping() {
		span.SetAttributes(attribute.Bool(tracing.AttrCacheHit, true))
	}

	rec, err := s.lookup.Get(ctx, id, id, s.ttl)
	s.finish(ctx, span, OpGet, err, "id", id)
	if err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}

// load is the cache miss path of Get.
func (s *Service) load(ctx context.Context, id string) (domain.Record, error) {
	span := trace.SpanFromContext(ctx)
	if !s.lookup.Skipping() {
		span.SetAttributes(attribute.Bool(tracing.AttrCacheHit, false))
	}
	return s.repo.Get(id)
}

// UpdateName renames the patient stored under id.
func (s *Service) UpdateName(ctx context.Context, id, newName string) (domain.Record, error) {
	ctx, span := s.start(ctx, OpUpdateName, attribute.String(tracing.AttrPatientID, id))

	previous := s.peek(id)
	rec, err := s.repo.UpdateName(id, newName)
	if err != nil {
		s.finish(ctx, span, OpUpdateName, err, "id", id)
		return domain.Record{}, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, id, rec, s.ttl)
	}
	if !previous.IsZero() {
		s.events.Publish(pubsub.UpdatedEvent, Change{Record: rec, PreviousName: previous.Name()})
	}
	s.finish(ctx, span, OpUpdateName, nil, "id", id)
	return rec, nil
}

// Delete removes the patient stored under id. A nil error means it existed.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := s.start(ctx, OpDelete, attribute.String(tracing.AttrPatientID, id))

	rec := s.peek(id)
	if err := s.repo.Delete(id); err != nil {
		s.finish(ctx, span, OpDelete, err, "id", id)
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, id); err != nil {
			log.ErrorErr(log.CatCache, "cache eviction failed", err, "id", id)
		}
	}
	if !rec.IsZero() {
		s.events.Publish(pubsub.DeletedEvent, Change{Record: rec})
	}
	s.finish(ctx, span, OpDelete, nil, "id", id)
	return nil
}

// peek reads id for change events. A failed read yields the zero Record,
// which suppresses the event.
func (s *Service) peek(id string) domain.Record {
	rec, err := s.repo.Get(id)
	if err != nil {
		return domain.Record{}
	}
	return rec
}

// List returns every patient in registration order.
func (s *Service) List(ctx context.Context) []domain.Record {
	ctx, span := s.start(ctx, OpList)

	records := s.repo.List()
	span.SetAttributes(attribute.Int(tracing.AttrRecordCount, len(records)))
	s.finish(ctx, span, OpList, nil, "count", len(records))
	return records
}

// NextID returns the identifier the next registration will receive.
func (s *Service) NextID() string {
	return s.repo.NextID()
}

// Subscribe streams change events until ctx is done.
func (s *Service) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return s.events.Subscribe(ctx)
}

// Listener returns a Bubble Tea friendly subscription to change events.
func (s *Service) Listener(ctx context.Context) *pubsub.ContinuousListener[Change] {
	return pubsub.NewContinuousListener(ctx, s.events)
}

// Close ends all event subscriptions.
func (s *Service) Close() {
	s.events.Close()
}
