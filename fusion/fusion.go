// Package fusion merges a dense candidate list and a sparse/lexical
// candidate list into one ranking.
//
// The engine is a pure function of its inputs and configuration: it holds
// no state between calls. Each side is normalized independently (unless the
// strategy defines its own scaling), entries missing from one side are
// treated as 0 after normalization, and the output is ordered descending by
// fused score with ties broken ascending by identifier for determinism.
package fusion

import (
	"math"
	"slices"

	"github.com/hupe1980/vexo/model"
)

// RRFConstant is the k in the reciprocal-rank formula 1/(k+rank).
const RRFConstant = 60

// DefaultAlpha is the default dense weight.
const DefaultAlpha = 0.5

// Side is one input score map. LowerIsBetter marks sides carrying raw
// distances (the graph index side); normalization inverts those so higher
// is always better afterwards. Fusion itself is symmetric in its sides.
type Side struct {
	Scores        map[model.ID]float32
	LowerIsBetter bool
}

// Config selects the fusion behavior for one query.
type Config struct {
	// Strategy is the combinator; StrategyWeightedSum by default.
	Strategy Strategy

	// Alpha is the dense-side weight in [0,1] for the weighted strategies.
	Alpha float64

	// Normalization is the per-side scaling for strategies that need one.
	Normalization Normalization
}

// DefaultConfig returns the default fusion configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:      StrategyWeightedSum,
		Alpha:         DefaultAlpha,
		Normalization: NormMinMax,
	}
}

// Validate rejects configurations outside the closed parameter space.
func (c Config) Validate() error {
	if c.Alpha < 0 || c.Alpha > 1 {
		return &ErrInvalidAlpha{Alpha: c.Alpha}
	}
	if c.Strategy < StrategyWeightedSum || c.Strategy > StrategyGeometricMean {
		return &ErrUnknownStrategy{Name: c.Strategy.String()}
	}
	if c.Normalization != NormMinMax && c.Normalization != NormZScore {
		return &ErrUnknownStrategy{Name: c.Normalization.String()}
	}
	return nil
}

// Scored is one fused entry together with the intermediate values the
// post-processor needs to build an explanation.
type Scored struct {
	ID    model.ID
	Fused float32

	HasDense  bool
	HasSparse bool
	RawDense  float32
	RawSparse float32

	NormDense  float32
	NormSparse float32
}

// Fuse combines the two sides under cfg. The result covers the union of
// both id sets, ordered descending by fused score, ties ascending by id.
func Fuse(dense, sparse Side, cfg Config) ([]Scored, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Strategy == StrategyReciprocalRankFusion {
		return fuseRRF(dense, sparse), nil
	}

	var normDense, normSparse map[model.ID]float32
	switch cfg.Strategy {
	case StrategyDistributionBased:
		normDense = normalizeDistribution(dense)
		normSparse = normalizeDistribution(sparse)
	case StrategyRelativeScore:
		normDense = normalizeMinMax(dense)
		normSparse = normalizeMinMax(sparse)
	default:
		normDense = normalize(dense, cfg.Normalization)
		normSparse = normalize(sparse, cfg.Normalization)
	}

	out := make([]Scored, 0, len(normDense)+len(normSparse))
	for _, id := range unionIDs(dense.Scores, sparse.Scores) {
		s := Scored{ID: id}
		if raw, ok := dense.Scores[id]; ok {
			s.HasDense = true
			s.RawDense = raw
			s.NormDense = normDense[id]
		}
		if raw, ok := sparse.Scores[id]; ok {
			s.HasSparse = true
			s.RawSparse = raw
			s.NormSparse = normSparse[id]
		}
		s.Fused = combine(cfg, s.NormDense, s.NormSparse)
		out = append(out, s)
	}

	sortScored(out)
	return out, nil
}

// combine applies the strategy to one pair of normalized scores.
func combine(cfg Config, d, s float32) float32 {
	switch cfg.Strategy {
	case StrategyWeightedSum, StrategyRelativeScore:
		return float32(cfg.Alpha)*d + float32(1-cfg.Alpha)*s
	case StrategyDistributionBased:
		return d + s
	case StrategyMax:
		return max(d, s)
	case StrategyMin:
		return min(d, s)
	case StrategyHarmonicMean:
		if d+s == 0 {
			return 0
		}
		return 2 * d * s / (d + s)
	case StrategyGeometricMean:
		p := float64(d) * float64(s)
		if p < 0 {
			return -float32(math.Sqrt(-p))
		}
		return float32(math.Sqrt(p))
	default:
		return 0
	}
}

// fuseRRF assigns 1/(60+rank) per side, ranks 1-based best-first, and sums.
func fuseRRF(dense, sparse Side) []Scored {
	fused := make(map[model.ID]*Scored, len(dense.Scores)+len(sparse.Scores))
	get := func(id model.ID) *Scored {
		s, ok := fused[id]
		if !ok {
			s = &Scored{ID: id}
			fused[id] = s
		}
		return s
	}

	for rank, id := range rankIDs(dense) {
		s := get(id)
		s.HasDense = true
		s.RawDense = dense.Scores[id]
		s.NormDense = 1 / float32(RRFConstant+rank+1)
		s.Fused += s.NormDense
	}
	for rank, id := range rankIDs(sparse) {
		s := get(id)
		s.HasSparse = true
		s.RawSparse = sparse.Scores[id]
		s.NormSparse = 1 / float32(RRFConstant+rank+1)
		s.Fused += s.NormSparse
	}

	out := make([]Scored, 0, len(fused))
	for _, s := range fused {
		out = append(out, *s)
	}
	sortScored(out)
	return out
}

// rankIDs orders one side best-first: ascending score for distance sides,
// descending otherwise; ties ascending by id for determinism.
func rankIDs(side Side) []model.ID {
	ids := make([]model.ID, 0, len(side.Scores))
	for id := range side.Scores {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b model.ID) int {
		sa, sb := side.Scores[a], side.Scores[b]
		if sa != sb {
			better := sa > sb
			if side.LowerIsBetter {
				better = sa < sb
			}
			if better {
				return -1
			}
			return 1
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return ids
}

func unionIDs(a, b map[model.ID]float32) []model.ID {
	ids := make([]model.ID, 0, len(a)+len(b))
	for id := range a {
		ids = append(ids, id)
	}
	for id := range b {
		if _, ok := a[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func sortScored(out []Scored) {
	slices.SortFunc(out, func(a, b Scored) int {
		if a.Fused != b.Fused {
			if a.Fused > b.Fused {
				return -1
			}
			return 1
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}
