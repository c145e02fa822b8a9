// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/nourish/internal/adapters/artifacts"
	eventqueue "github.com/okian/nourish/internal/adapters/mq/queue"
	workerpool "github.com/okian/nourish/internal/adapters/mq/worker"
	"github.com/okian/nourish/internal/adapters/repository"
	"github.com/okian/nourish/internal/domain/dedupe"
	"github.com/okian/nourish/internal/domain/encoding"
	"github.com/okian/nourish/internal/domain/mealtext"
	"github.com/okian/nourish/internal/domain/model"
	"github.com/okian/nourish/internal/domain/predict"
	"github.com/okian/nourish/internal/domain/types"
	"github.com/okian/nourish/pkg/logger"
	"github.com/okian/nourish/pkg/metrics"
)

// Service implements the API dependencies for the risk assessment system.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry   repository.Store
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	assessor   *predict.Assessor
	extractor  mealtext.Extractor
	workerPool *workerpool.Pool

	// Immutably loaded model state
	loaded *artifacts.Loaded

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	shardCount  int

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the ingest queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of registry shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithArtifacts injects the trained model bundle. The service cannot start
// without one.
func WithArtifacts(loaded *artifacts.Loaded) Option {
	return func(s *Service) {
		s.loaded = loaded
	}
}

// WithExtractor replaces the meal-text extractor.
func WithExtractor(ex mealtext.Extractor) Option {
	return func(s *Service) {
		if ex != nil {
			s.extractor = ex
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   100000,
		dedupeSize:  50000,
		shardCount:  8,
		extractor:   mealtext.NewKeywordExtractor(),
		stopCh:      make(chan struct{}),
		logger:      nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.loaded == nil {
		return fmt.Errorf("start: %w", artifacts.ErrModelUnavailable)
	}

	s.logger.Info(ctx, "starting risk assessment service...")

	s.registry = repository.NewShardedRegistry(ctx,
		repository.WithShardCount(s.shardCount),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)
	s.assessor = predict.NewAssessor(
		s.loaded.Regressor,
		s.loaded.Classifier,
		s.loaded.AgeEncoder,
		s.loaded.RegionEncoder,
		s.loaded.GenderEncoder,
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.assessor, s.registry)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "risk assessment service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("shards", s.shardCount),
		logger.String("trainedAt", s.loaded.TrainedAt.Format(time.RFC3339)),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping risk assessment service...")

	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	if q, ok := s.eventQueue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "risk assessment service stopped")
}

// Assess synchronously scores one subject with the loaded models.
func (s *Service) Assess(ctx context.Context, in model.AssessmentInput) (model.Assessment, error) {
	if s.assessor == nil {
		return model.Assessment{}, fmt.Errorf("assess: %w", artifacts.ErrModelUnavailable)
	}

	start := time.Now()
	assessment, err := s.assessor.Assess(ctx, in)
	if err != nil {
		metrics.RecordAssessmentError(errorKind(err))
		var uc *encoding.UnknownCategoryError
		if errors.As(err, &uc) {
			metrics.RecordUnknownCategory(uc.Field)
		}
		return model.Assessment{}, err
	}
	metrics.RecordAssessment(
		string(assessment.RiskCategory),
		float64(time.Since(start).Milliseconds()),
		len(assessment.Recommendations),
	)
	return assessment, nil
}

// ExtractMeals parses a free-text meal description.
func (s *Service) ExtractMeals(ctx context.Context, text string) (mealtext.Extraction, error) {
	extraction, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return mealtext.Extraction{}, err
	}
	metrics.RecordExtraction()
	return extraction, nil
}

// SeenAndRecord atomically checks if an event id was seen and records it if not.
// Returns true if the event was already seen, false if it was newly recorded.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordIngestDuplicate()
	}
	return seen
}

// Unrecord removes an event ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits an ingest event for asynchronous processing.
func (s *Service) Enqueue(ctx context.Context, e model.IngestEvent) bool {
	ok := s.eventQueue.Enqueue(ctx, e)
	if ok {
		metrics.RecordIngestAccepted()
	}
	return ok
}

// List returns assessed records, optionally filtered by risk category.
func (s *Service) List(ctx context.Context, category model.RiskCategory, limit int) ([]model.BeneficiaryRecord, error) {
	return s.registry.List(ctx, category, limit)
}

// Get returns the assessed record for one beneficiary.
func (s *Service) Get(ctx context.Context, id string) (model.BeneficiaryRecord, error) {
	return s.registry.Get(ctx, id)
}

// TopRisk returns the n highest-risk entries.
func (s *Service) TopRisk(ctx context.Context, n int) ([]types.Entry, error) {
	return s.registry.TopRisk(ctx, n)
}

// DashboardStats computes the population-level aggregates.
func (s *Service) DashboardStats(ctx context.Context) (types.DashboardStats, error) {
	return s.registry.Stats(ctx)
}

// Count returns the number of beneficiaries tracked.
func (s *Service) Count(ctx context.Context) int {
	return s.registry.Count(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"shardCount":  s.shardCount,
	}

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		total := s.registry.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalBeneficiaries"] = total
		stats["modelTrainedAt"] = s.loaded.TrainedAt.Format(time.RFC3339)

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalBeneficiaries(total)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
