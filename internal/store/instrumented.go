package store

import (
	"context"

	"socialfeed/internal/observability"
)

// Instrumented decorates a Store with logging, metrics and tracing.
type Instrumented struct {
	next    Store
	backend string
	log     *observability.StoreLogger
}

// Instrument wraps next, labelling telemetry with backend.
func Instrument(next Store, backend string) *Instrumented {
	return &Instrumented{
		next:    next,
		backend: backend,
		log:     observability.NewStoreLogger(backend),
	}
}

func (s *Instrumented) Load(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span := observability.TraceStoreOperation(ctx, s.backend, "load", key)
	defer span.End()
	defer observability.TrackStoreOperation(s.backend, "load")()

	blob, found, err := s.next.Load(ctx, key)
	if err != nil {
		span.RecordError(err)
		observability.StoreErrors.WithLabelValues(s.backend, "load").Inc()
		s.log.LogError(ctx, err, "load", key)
		return nil, false, err
	}
	s.log.LogLoad(ctx, key, found, len(blob))
	return blob, found, nil
}

func (s *Instrumented) Save(ctx context.Context, key string, blob []byte) error {
	ctx, span := observability.TraceStoreOperation(ctx, s.backend, "save", key)
	defer span.End()
	defer observability.TrackStoreOperation(s.backend, "save")()

	if err := s.next.Save(ctx, key, blob); err != nil {
		span.RecordError(err)
		observability.StoreErrors.WithLabelValues(s.backend, "save").Inc()
		s.log.LogError(ctx, err, "save", key)
		return err
	}
	s.log.LogSave(ctx, key, len(blob))
	return nil
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
