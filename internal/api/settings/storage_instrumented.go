package settings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/rotinaai-settings/app/observability/metrics"
	"github.com/FACorreiaa/rotinaai-settings/internal/kv"
)

var _ kv.UserScoper = (*instrumentedStorage)(nil)

type instrumentedStorage struct {
	next    Storage
	backend string
	metrics *metrics.AppMetrics
}

// InstrumentStorage wraps next so every call is traced and timed. A nil m
// disables metrics but keeps tracing.
func InstrumentStorage(next Storage, backend string, m *metrics.AppMetrics) Storage {
	return &instrumentedStorage{next: next, backend: backend, metrics: m}
}

// ForUser scopes the wrapped store to userID and keeps instrumenting it.
func (s *instrumentedStorage) ForUser(userID uuid.UUID) kv.Store {
	return &instrumentedStorage{next: kv.ForUser(s.next, userID), backend: s.backend, metrics: s.metrics}
}

func (s *instrumentedStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := s.observe(ctx, "get", key, func(ctx context.Context) error {
		var err error
		value, ok, err = s.next.Get(ctx, key)
		return err
	})
	return value, ok, err
}

func (s *instrumentedStorage) Set(ctx context.Context, key, value string) error {
	return s.observe(ctx, "set", key, func(ctx context.Context) error {
		return s.next.Set(ctx, key, value)
	})
}

func (s *instrumentedStorage) Remove(ctx context.Context, key string) error {
	return s.observe(ctx, "remove", key, func(ctx context.Context) error {
		return s.next.Remove(ctx, key)
	})
}

func (s *instrumentedStorage) observe(ctx context.Context, op, key string, fn func(context.Context) error) error {
	attrs := []attribute.KeyValue{
		attribute.String("settings.storage.backend", s.backend),
		attribute.String("settings.storage.op", op),
	}
	ctx, span := otel.Tracer("SettingsStorage").Start(ctx, "storage."+op, trace.WithAttributes(
		append(attrs, attribute.String("settings.storage.key", key))...,
	))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	if s.metrics != nil {
		set := metric.WithAttributes(attrs...)
		s.metrics.StorageOpDurationSeconds.Record(ctx, time.Since(start).Seconds(), set)
		if err != nil {
			s.metrics.StorageOpErrorsTotal.Add(ctx, 1, set)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage "+op+" failed")
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
