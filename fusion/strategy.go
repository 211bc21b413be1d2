package fusion

import "fmt"

// Strategy selects how the two score sides are combined. Strategies form a
// closed set of pure combinators over two scalar score maps; there is
// deliberately no plugin interface.
type Strategy int

const (
	// StrategyWeightedSum is alpha*dense + (1-alpha)*sparse over normalized
	// scores. The default.
	StrategyWeightedSum Strategy = iota

	// StrategyReciprocalRankFusion sums 1/(60+rank) per side. Rank-based and
	// scale-agnostic; raw magnitudes are discarded.
	StrategyReciprocalRankFusion

	// StrategyDistributionBased normalizes each side by its own score
	// distribution, (score-(mean-3sd))/(6sd) clamped to [0,1], then sums.
	// Robust against outliers.
	StrategyDistributionBased

	// StrategyRelativeScore is min-max normalization followed by the
	// alpha-weighted sum; preserves magnitude better than RRF.
	StrategyRelativeScore

	// StrategyMax takes the elementwise maximum of the normalized sides.
	StrategyMax

	// StrategyMin takes the elementwise minimum; both signals required.
	StrategyMin

	// StrategyHarmonicMean is 2ds/(d+s); penalizes a weak side.
	StrategyHarmonicMean

	// StrategyGeometricMean is sign(ds)*sqrt(|ds|); the sign is tracked so
	// negative normalized scores (z-score) stay meaningful.
	StrategyGeometricMean
)

func (s Strategy) String() string {
	switch s {
	case StrategyWeightedSum:
		return "weighted-sum"
	case StrategyReciprocalRankFusion:
		return "rrf"
	case StrategyDistributionBased:
		return "distribution-based"
	case StrategyRelativeScore:
		return "relative-score"
	case StrategyMax:
		return "max"
	case StrategyMin:
		return "min"
	case StrategyHarmonicMean:
		return "harmonic-mean"
	case StrategyGeometricMean:
		return "geometric-mean"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// ParseStrategy parses a strategy name as produced by Strategy.String.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "weighted-sum":
		return StrategyWeightedSum, nil
	case "rrf":
		return StrategyReciprocalRankFusion, nil
	case "distribution-based":
		return StrategyDistributionBased, nil
	case "relative-score":
		return StrategyRelativeScore, nil
	case "max":
		return StrategyMax, nil
	case "min":
		return StrategyMin, nil
	case "harmonic-mean":
		return StrategyHarmonicMean, nil
	case "geometric-mean":
		return StrategyGeometricMean, nil
	default:
		return 0, &ErrUnknownStrategy{Name: name}
	}
}

// Normalization selects how raw scores are scaled before combination.
// Rank-based and distribution-based strategies define their own scaling and
// ignore this setting.
type Normalization int

const (
	// NormMinMax scales each side to [0,1]. The default.
	NormMinMax Normalization = iota

	// NormZScore centers each side at 0 with unit variance.
	NormZScore
)

func (n Normalization) String() string {
	switch n {
	case NormMinMax:
		return "min-max"
	case NormZScore:
		return "z-score"
	default:
		return fmt.Sprintf("Unknown(%d)", int(n))
	}
}

// ErrUnknownStrategy indicates a strategy outside the closed set.
type ErrUnknownStrategy struct {
	Name string
}

func (e *ErrUnknownStrategy) Error() string {
	return fmt.Sprintf("unknown fusion strategy: %q", e.Name)
}

// ErrInvalidAlpha indicates an alpha weight outside [0,1].
type ErrInvalidAlpha struct {
	Alpha float64
}

func (e *ErrInvalidAlpha) Error() string {
	return fmt.Sprintf("alpha must be in [0,1], got %v", e.Alpha)
}
