package storage

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/xenking/swift-grocers/internal/storage"

var _ Store = (*Instrumented)(nil)

// Instrumented decorates a Store with a span per call and a failure counter.
type Instrumented struct {
	next     Store
	backend  string
	tracer   trace.Tracer
	failures metric.Int64Counter
}

// Instrument wraps next. Nil providers fall back to the global ones.
func Instrument(next Store, backend string, tp trace.TracerProvider, mp metric.MeterProvider) (*Instrumented, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	failures, err := mp.Meter(instrumentationName).Int64Counter("swiftcart.store.failures",
		metric.WithDescription("Failed persisted store operations"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create failures counter")
	}

	return &Instrumented{
		next:     next,
		backend:  backend,
		tracer:   tp.Tracer(instrumentationName),
		failures: failures,
	}, nil
}

func (s *Instrumented) Read(ctx context.Context, key string) ([]byte, error) {
	ctx, span := s.start(ctx, "store.Read", key)
	defer span.End()

	v, err := s.next.Read(ctx, key)
	if err != nil {
		s.fail(ctx, span, "read", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("store.value_bytes", len(v)))
	return v, nil
}

func (s *Instrumented) Write(ctx context.Context, key string, value []byte) error {
	ctx, span := s.start(ctx, "store.Write", key)
	defer span.End()

	span.SetAttributes(attribute.Int("store.value_bytes", len(value)))
	if err := s.next.Write(ctx, key, value); err != nil {
		s.fail(ctx, span, "write", err)
		return err
	}
	return nil
}

func (s *Instrumented) start(ctx context.Context, name, key string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("store.backend", s.backend),
			attribute.String("store.key", key),
		),
	)
}

func (s *Instrumented) fail(ctx context.Context, span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("store.backend", s.backend),
		attribute.String("store.op", op),
	))
}
