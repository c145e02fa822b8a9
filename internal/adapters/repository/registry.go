package repository

import (
	"context"
	"hash/fnv"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/nourish/internal/domain/model"
	"github.com/okian/nourish/internal/domain/types"
	"github.com/okian/nourish/pkg/metrics"
)

// Sharded, in-memory Store implementation.
//
// Writes lock a single shard keyed by beneficiary ID hash. Reads that need
// ordering or aggregates go through an immutable snapshot that is rebuilt
// lazily after a write and swapped atomically, so concurrent readers never
// observe a half-built view.
//
// Ordering: risk score DESC, then beneficiary ID ASC (deterministic).

// defaultShardCount balances lock contention against snapshot rebuild cost.
const defaultShardCount = 8

// roundFactor rounds aggregate scores to one decimal place.
const roundFactor = 10

type shard struct {
	mu   sync.RWMutex
	recs map[string]model.BeneficiaryRecord
}

// snapshot is an immutable view of the registry used for ordered reads.
type snapshot struct {
	ordered []model.BeneficiaryRecord
	stats   types.DashboardStats
}

// ShardedRegistry implements Store.
type ShardedRegistry struct {
	shards     []*shard
	shardCount int

	dirty  atomic.Bool
	snapMu sync.Mutex
	snap   atomic.Pointer[snapshot]
}

// NewShardedRegistry creates an empty registry with configuration options.
func NewShardedRegistry(_ context.Context, opts ...Option) *ShardedRegistry {
	r := &ShardedRegistry{
		shardCount: defaultShardCount,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.shards = make([]*shard, r.shardCount)
	for i := range r.shards {
		r.shards[i] = &shard{recs: make(map[string]model.BeneficiaryRecord)}
	}
	r.dirty.Store(true)

	metrics.UpdateRegistryShardCount(r.shardCount)

	return r
}

func (r *ShardedRegistry) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return r.shards[h.Sum32()%uint32(r.shardCount)]
}

// Upsert inserts or replaces a record by beneficiary ID.
func (r *ShardedRegistry) Upsert(_ context.Context, rec model.BeneficiaryRecord) (bool, error) {
	if rec.ID == "" {
		return false, ErrEmptyID
	}

	start := time.Now()
	s := r.shardFor(rec.ID)
	s.mu.Lock()
	_, existed := s.recs[rec.ID]
	s.recs[rec.ID] = rec
	s.mu.Unlock()

	r.dirty.Store(true)
	metrics.RecordRegistryUpdateLatency(float64(time.Since(start).Milliseconds()))

	return !existed, nil
}

// Get returns the record for a beneficiary ID.
func (r *ShardedRegistry) Get(_ context.Context, id string) (model.BeneficiaryRecord, error) {
	if id == "" {
		return model.BeneficiaryRecord{}, ErrEmptyID
	}
	s := r.shardFor(id)
	s.mu.RLock()
	rec, ok := s.recs[id]
	s.mu.RUnlock()
	if !ok {
		return model.BeneficiaryRecord{}, ErrNotFound
	}
	return rec, nil
}

// List returns records ordered by risk score descending.
func (r *ShardedRegistry) List(_ context.Context, category model.RiskCategory, limit int) ([]model.BeneficiaryRecord, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	start := time.Now()
	defer func() {
		metrics.RecordRegistryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	snap := r.snapshotNow()
	out := make([]model.BeneficiaryRecord, 0, limit)
	for _, rec := range snap.ordered {
		if category != "" && rec.RiskCategory != category {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// TopRisk returns the n highest-risk entries for operator triage.
func (r *ShardedRegistry) TopRisk(_ context.Context, n int) ([]types.Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	start := time.Now()
	defer func() {
		metrics.RecordRegistryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	snap := r.snapshotNow()
	if n > len(snap.ordered) {
		n = len(snap.ordered)
	}
	out := make([]types.Entry, n)
	for i := 0; i < n; i++ {
		rec := snap.ordered[i]
		out[i] = types.Entry{
			Rank:          i + 1,
			BeneficiaryID: rec.ID,
			RiskScore:     rec.RiskScore,
			RiskCategory:  string(rec.RiskCategory),
			Region:        rec.Region,
		}
	}
	return out, nil
}

// Stats computes the population-level dashboard aggregates.
func (r *ShardedRegistry) Stats(_ context.Context) (types.DashboardStats, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRegistryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	return r.snapshotNow().stats, nil
}

// Count returns the number of beneficiaries tracked in the registry.
func (r *ShardedRegistry) Count(_ context.Context) int {
	total := 0
	for _, s := range r.shards {
		s.mu.RLock()
		total += len(s.recs)
		s.mu.RUnlock()
	}
	return total
}

// snapshotNow returns the current snapshot, rebuilding it when stale.
func (r *ShardedRegistry) snapshotNow() *snapshot {
	if snap := r.snap.Load(); snap != nil && !r.dirty.Load() {
		return snap
	}

	r.snapMu.Lock()
	defer r.snapMu.Unlock()

	// Recheck under the rebuild lock: another reader may have finished.
	if snap := r.snap.Load(); snap != nil && !r.dirty.Load() {
		return snap
	}
	r.dirty.Store(false)

	var all []model.BeneficiaryRecord
	for _, s := range r.shards {
		s.mu.RLock()
		for _, rec := range s.recs {
			all = append(all, rec)
		}
		s.mu.RUnlock()
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].RiskScore != all[j].RiskScore {
			return all[i].RiskScore > all[j].RiskScore
		}
		return all[i].ID < all[j].ID
	})

	snap := &snapshot{
		ordered: all,
		stats:   buildStats(all),
	}
	r.snap.Store(snap)

	metrics.UpdateTotalBeneficiaries(len(all))
	for cat, n := range map[model.RiskCategory]int{
		model.RiskHigh:   snap.stats.HighRiskCount,
		model.RiskMedium: snap.stats.MediumRiskCount,
		model.RiskLow:    snap.stats.LowRiskCount,
	} {
		metrics.UpdateRiskCategoryCount(string(cat), n)
	}

	return snap
}

// buildStats aggregates one snapshot's population summaries.
func buildStats(all []model.BeneficiaryRecord) types.DashboardStats {
	stats := types.DashboardStats{
		TotalBeneficiaries: len(all),
		Regions:            []string{},
		RegionStats:        make(map[string]types.RegionStats),
		RiskByAgeGroup:     make(map[string]map[string]int),
	}

	regionSums := make(map[string]float64)
	var scoreSum float64

	for _, rec := range all {
		scoreSum += rec.RiskScore

		switch rec.RiskCategory {
		case model.RiskHigh:
			stats.HighRiskCount++
		case model.RiskMedium:
			stats.MediumRiskCount++
		case model.RiskLow:
			stats.LowRiskCount++
		}

		rs := stats.RegionStats[rec.Region]
		rs.Count++
		stats.RegionStats[rec.Region] = rs
		regionSums[rec.Region] += rec.RiskScore

		byCat := stats.RiskByAgeGroup[string(rec.AgeGroup)]
		if byCat == nil {
			byCat = make(map[string]int)
			stats.RiskByAgeGroup[string(rec.AgeGroup)] = byCat
		}
		byCat[string(rec.RiskCategory)]++
	}

	for region, rs := range stats.RegionStats {
		rs.AvgRiskScore = round1(regionSums[region] / float64(rs.Count))
		stats.RegionStats[region] = rs
		stats.Regions = append(stats.Regions, region)
	}
	sort.Strings(stats.Regions)

	if len(all) > 0 {
		stats.AvgRiskScore = round1(scoreSum / float64(len(all)))
	}

	return stats
}

func round1(v float64) float64 {
	return math.Round(v*roundFactor) / roundFactor
}
