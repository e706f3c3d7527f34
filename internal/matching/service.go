package matching

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mediplus/clinic-platform/internal/appointments"
	"github.com/mediplus/clinic-platform/internal/observability/metrics"
	"github.com/mediplus/clinic-platform/pkg/logging"
)

// AvailabilitySource reports a doctor's open slots per scheduled weekday.
// The appointments service implements it.
type AvailabilitySource interface {
	Availability(ctx context.Context, doctorID uuid.UUID) ([]appointments.DayAvailability, error)
}

// Recommendation is the full response for one symptom description: the
// match plus a fresh availability snapshot of the chosen doctor.
type Recommendation struct {
	Match
	Availability []appointments.DayAvailability `json:"availability"`
}

// Service runs the recommendation flow: cache, engine, availability.
// Only the match itself is cached; availability is fetched live so the
// snapshot never shows stale capacity.
type Service struct {
	engine       *Engine
	cache        *Cache
	availability AvailabilitySource
	metrics      *metrics.MatchingMetrics
	logger       *logging.Logger
	tracer       trace.Tracer
}

// NewService constructs the matching service. cache and m may be nil.
func NewService(engine *Engine, cache *Cache, availability AvailabilitySource, m *metrics.MatchingMetrics, logger *logging.Logger) *Service {
	if engine == nil {
		panic("matching: engine required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		engine:       engine,
		cache:        cache,
		availability: availability,
		metrics:      m,
		logger:       logger,
		tracer:       otel.Tracer("mediplus.internal.matching"),
	}
}

// Recommend matches a symptom description to a doctor.
func (s *Service) Recommend(ctx context.Context, symptoms string) (*Recommendation, error) {
	ctx, span := s.tracer.Start(ctx, "matching.recommend")
	defer span.End()
	started := time.Now()

	match := s.cache.Get(ctx, symptoms)
	source := "cache"
	if match == nil {
		source = "engine"
		var err error
		match, err = s.engine.Match(ctx, symptoms)
		if err != nil {
			span.RecordError(err)
			s.metrics.ObserveMatch("error", time.Since(started).Seconds())
			return nil, err
		}
		s.cache.Put(ctx, symptoms, match)
	}
	s.metrics.ObserveMatch(source, time.Since(started).Seconds())

	rec := &Recommendation{Match: *match, Availability: []appointments.DayAvailability{}}
	if s.availability != nil {
		avail, err := s.availability.Availability(ctx, match.Doctor.ID)
		if err != nil {
			// The match is still useful without the snapshot.
			s.logger.Error("availability snapshot failed", "error", err, "doctor_id", match.Doctor.ID)
		} else if avail != nil {
			rec.Availability = avail
		}
	}
	return rec, nil
}
