package llm

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	at time.Time
	ms int64
}

// Snapshot is a point-in-time view of LLM call activity: latency
// aggregates over the rolling window plus lifetime call and error
// counters broken out by usage label.
type Snapshot struct {
	Count        int              `json:"count"`
	Errors       int64            `json:"errors"`
	CallsByLabel map[string]int64 `json:"calls_by_label"`
	MinMs        int64            `json:"min_ms"`
	MaxMs        int64            `json:"max_ms"`
	AvgMs        float64          `json:"avg_ms"`
	P50Ms        float64          `json:"p50_ms"`
	P95Ms        float64          `json:"p95_ms"`
	P99Ms        float64          `json:"p99_ms"`
}

// Stats tracks LLM call latencies within a rolling window and counts
// calls per usage label and transport errors for the client's lifetime.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
	calls   map[string]int64
	errors  int64
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
		calls:   make(map[string]int64),
	}
}

// Record registers one call under the given usage label. Failed calls
// count toward the error counter but still contribute a latency sample.
func (s *Stats) Record(label string, d time.Duration, failed bool) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[label]++
	if failed {
		s.errors++
	}
	s.pruneLocked(now)
	s.samples = append(s.samples, sample{at: now, ms: ms})
}

// Snapshot aggregates the current window. Call and error counters are
// lifetime totals and survive window expiry.
func (s *Stats) Snapshot() Snapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)

	snap := Snapshot{
		Errors:       s.errors,
		CallsByLabel: make(map[string]int64, len(s.calls)),
	}
	for label, n := range s.calls {
		snap.CallsByLabel[label] = n
	}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]int64, len(s.samples))
	var sum int64
	for i, sm := range s.samples {
		values[i] = sm.ms
		sum += sm.ms
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

// pruneLocked drops samples older than the window. Samples arrive in
// time order, so the survivors are a suffix.
func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	keep := sort.Search(len(s.samples), func(i int) bool {
		return !s.samples[i].at.Before(cutoff)
	})
	if keep > 0 {
		s.samples = append(s.samples[:0], s.samples[keep:]...)
	}
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}

	rank := (float64(len(sorted)-1) * pct) / 100.0
	lower := int(rank)
	upper := lower + 1
	if upper >= len(sorted) {
		return float64(sorted[lower])
	}
	weight := rank - float64(lower)
	return float64(sorted[lower]) + (float64(sorted[upper])-float64(sorted[lower]))*weight
}
