// Package rank scores workspace paths by how likely they are to matter to
// the user's current work. The score combines four signals: interaction
// frequency (visits and strokes), recency of activity, accumulated dwell
// time, and optional semantic similarity to a query. Each signal is
// normalized into [0, 1] before weighting so the configured weights compare
// like with like.
package rank

import (
	"math"
	"sort"
	"time"

	"github.com/tacit-sh/tacit/internal/config"
)

// MinSamples is the interaction volume below which frequency and dwell are
// damped. A path touched once should not outrank a path the user works in
// daily just because the decay curve favors the newer timestamp.
const MinSamples = 3

// Signal carries one path's raw ranking inputs.
type Signal struct {
	Path           string
	Visits         int64
	Strokes        int64
	SessionSeconds float64
	LastActive     time.Time
	// Similarity is cosine similarity to the query in [0, 1]. Leave zero
	// when no query embedding is available.
	Similarity float64
}

// Weights scales the four signal components.
type Weights struct {
	Frequency  float64
	Recency    float64
	Dwell      float64
	Similarity float64
}

// WeightsFromConfig extracts the ranking weights from config.
func WeightsFromConfig(cfg *config.Config) Weights {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return Weights{
		Frequency:  cfg.WeightFrequency,
		Recency:    cfg.WeightRecency,
		Dwell:      cfg.WeightDwell,
		Similarity: cfg.WeightSimilarity,
	}
}

// Ranked is one scored path with its component breakdown.
type Ranked struct {
	Path       string  `json:"path"`
	Score      float64 `json:"score"`
	Frequency  float64 `json:"frequency"`
	Recency    float64 `json:"recency"`
	Dwell      float64 `json:"dwell"`
	Similarity float64 `json:"similarity"`
}

// Ranker scores and orders signals.
type Ranker struct {
	weights  Weights
	halfLife time.Duration
	now      func() time.Time
}

// New creates a ranker with the given weights and recency half-life.
// A non-positive half-life falls back to the default of 7 days.
func New(w Weights, halfLife time.Duration) *Ranker {
	if halfLife <= 0 {
		halfLife = time.Duration(config.DefaultConfig().DecayHalfLifeHours) * time.Hour
	}
	return &Ranker{weights: w, halfLife: halfLife, now: time.Now}
}

// FromConfig creates a ranker configured entirely from cfg.
func FromConfig(cfg *config.Config) *Ranker {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return New(WeightsFromConfig(cfg), time.Duration(cfg.DecayHalfLifeHours)*time.Hour)
}

// Rank scores the signals and returns them ordered best first. Ties break
// on path so the ordering is deterministic.
func (r *Ranker) Rank(signals []Signal) []Ranked {
	ranked := make([]Ranked, 0, len(signals))
	for _, s := range signals {
		ranked = append(ranked, r.score(s))
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Path < ranked[j].Path
	})

	return ranked
}

// Top returns the best n ranked signals.
func (r *Ranker) Top(signals []Signal, n int) []Ranked {
	ranked := r.Rank(signals)
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func (r *Ranker) score(s Signal) Ranked {
	freq := normalizeLog(float64(s.Visits + s.Strokes))
	dwell := normalizeLog(s.SessionSeconds / 60) // minutes
	recency := r.decay(s.LastActive)
	similarity := clamp01(s.Similarity)

	// Thin evidence: damp the volume-derived components so a couple of
	// stray strokes don't dominate the ranking.
	if s.Visits+s.Strokes < MinSamples {
		freq *= 0.5
		dwell *= 0.5
	}

	score := r.weights.Frequency*freq +
		r.weights.Recency*recency +
		r.weights.Dwell*dwell +
		r.weights.Similarity*similarity

	return Ranked{
		Path:       s.Path,
		Score:      score,
		Frequency:  freq,
		Recency:    recency,
		Dwell:      dwell,
		Similarity: similarity,
	}
}

// decay maps time-since-activity onto (0, 1] with the configured half-life:
// activity right now scores 1, one half-life ago scores 0.5, and so on.
func (r *Ranker) decay(lastActive time.Time) float64 {
	if lastActive.IsZero() {
		return 0
	}
	age := r.now().Sub(lastActive)
	if age <= 0 {
		return 1
	}
	return math.Pow(0.5, age.Hours()/r.halfLife.Hours())
}

// normalizeLog squashes an unbounded non-negative count into [0, 1).
// log1p keeps small counts distinguishable; the divisor puts ~8000 events
// near the top of the range.
func normalizeLog(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return clamp01(math.Log1p(v) / 9)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
