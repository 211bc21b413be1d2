package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vexo/model"
)

func ids(scored []Scored) []model.ID {
	out := make([]model.ID, len(scored))
	for i, s := range scored {
		out[i] = s.ID
	}
	return out
}

func TestFuseWeightedSum(t *testing.T) {
	dense := Side{
		Scores:        map[model.ID]float32{"A": 0.1, "B": 0.5, "C": 0.9},
		LowerIsBetter: true,
	}
	sparse := Side{
		Scores: map[model.ID]float32{"A": 1.0, "C": 3.0},
	}

	scored, err := Fuse(dense, sparse, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, scored, 3)

	// Min-max: dense A=1, B=0.5, C=0 (inverted); sparse A=0, C=1, B missing=0.
	// Alpha 0.5: A=0.5, C=0.5, B=0.25. The A/C tie breaks ascending by id.
	assert.Equal(t, []model.ID{"A", "C", "B"}, ids(scored))
	assert.InDelta(t, 0.5, scored[0].Fused, 1e-5)
	assert.InDelta(t, 0.5, scored[1].Fused, 1e-5)
	assert.InDelta(t, 0.25, scored[2].Fused, 1e-5)

	// Intermediate values survive for the explanation layer.
	b := scored[2]
	assert.True(t, b.HasDense)
	assert.False(t, b.HasSparse)
	assert.InDelta(t, 0.5, b.RawDense, 1e-5)
	assert.InDelta(t, 0.5, b.NormDense, 1e-5)
	assert.Zero(t, b.NormSparse)
}

func TestFuseAlphaWeighting(t *testing.T) {
	dense := Side{
		Scores:        map[model.ID]float32{"A": 0.1, "B": 0.5, "C": 0.9},
		LowerIsBetter: true,
	}
	sparse := Side{
		Scores: map[model.ID]float32{"A": 1.0, "C": 3.0},
	}

	t.Run("PureDense", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Alpha = 1.0
		scored, err := Fuse(dense, sparse, cfg)
		require.NoError(t, err)
		assert.Equal(t, []model.ID{"A", "B", "C"}, ids(scored))
	})

	t.Run("PureSparse", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Alpha = 0.0
		scored, err := Fuse(dense, sparse, cfg)
		require.NoError(t, err)
		assert.Equal(t, []model.ID{"C", "A", "B"}, ids(scored))
	})
}

func TestFuseRRF(t *testing.T) {
	dense := Side{
		Scores:        map[model.ID]float32{"A": 0.1, "B": 0.2},
		LowerIsBetter: true,
	}
	sparse := Side{
		Scores: map[model.ID]float32{"B": 5, "C": 1},
	}

	cfg := DefaultConfig()
	cfg.Strategy = StrategyReciprocalRankFusion

	scored, err := Fuse(dense, sparse, cfg)
	require.NoError(t, err)
	require.Len(t, scored, 3)

	// Ranks are 1-based best-first per side: dense A=1, B=2; sparse B=1, C=2.
	assert.Equal(t, []model.ID{"B", "A", "C"}, ids(scored))
	assert.InDelta(t, 1.0/62+1.0/61, scored[0].Fused, 1e-6)
	assert.InDelta(t, 1.0/61, scored[1].Fused, 1e-6)
	assert.InDelta(t, 1.0/62, scored[2].Fused, 1e-6)
}

func TestFuseDistributionBased(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = StrategyDistributionBased

	t.Run("SparseOnly", func(t *testing.T) {
		scored, err := Fuse(Side{}, Side{Scores: map[model.ID]float32{"A": 1, "B": 2, "C": 3}}, cfg)
		require.NoError(t, err)
		require.Len(t, scored, 3)

		// (s-(mean-3sd))/(6sd) with mean=2, sd=sqrt(2/3).
		byID := map[model.ID]float32{}
		for _, s := range scored {
			byID[s.ID] = s.Fused
		}
		assert.InDelta(t, 0.295876, byID["A"], 1e-5)
		assert.InDelta(t, 0.5, byID["B"], 1e-5)
		assert.InDelta(t, 0.704124, byID["C"], 1e-5)
	})

	t.Run("ZeroVarianceMapsToCenter", func(t *testing.T) {
		scored, err := Fuse(Side{}, Side{Scores: map[model.ID]float32{"A": 2, "B": 2}}, cfg)
		require.NoError(t, err)
		for _, s := range scored {
			assert.InDelta(t, 0.5, s.Fused, 1e-6)
		}
	})
}

func TestFuseRelativeScoreUsesMinMax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = StrategyRelativeScore
	cfg.Normalization = NormZScore // must be ignored by this strategy

	dense := Side{Scores: map[model.ID]float32{"A": 0.0, "B": 1.0}, LowerIsBetter: true}
	scored, err := Fuse(dense, Side{}, cfg)
	require.NoError(t, err)
	require.Len(t, scored, 2)

	assert.Equal(t, model.ID("A"), scored[0].ID)
	assert.InDelta(t, 0.5, scored[0].Fused, 1e-5) // 0.5*1 + 0.5*0
	assert.InDelta(t, 0.0, scored[1].Fused, 1e-5)
}

func TestFuseZScore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Normalization = NormZScore

	dense := Side{Scores: map[model.ID]float32{"A": 0, "B": 1}, LowerIsBetter: true}
	scored, err := Fuse(dense, Side{}, cfg)
	require.NoError(t, err)
	require.Len(t, scored, 2)

	// mean 0.5, sd 0.5; inversion flips the sign for the distance side.
	assert.Equal(t, model.ID("A"), scored[0].ID)
	assert.InDelta(t, 0.5, scored[0].Fused, 1e-5)
	assert.InDelta(t, -0.5, scored[1].Fused, 1e-5)
}

func TestFuseElementwiseStrategies(t *testing.T) {
	dense := Side{
		Scores:        map[model.ID]float32{"A": 0, "B": 0.5, "C": 1},
		LowerIsBetter: true,
	}
	sparse := Side{
		Scores: map[model.ID]float32{"A": 2, "B": 8, "C": 10},
	}
	// Normalized: dense A=1, B=0.5, C=0; sparse A=0, B=0.75, C=1.

	run := func(s Strategy) map[model.ID]float32 {
		cfg := DefaultConfig()
		cfg.Strategy = s
		scored, err := Fuse(dense, sparse, cfg)
		require.NoError(t, err)
		out := map[model.ID]float32{}
		for _, sc := range scored {
			out[sc.ID] = sc.Fused
		}
		return out
	}

	t.Run("Max", func(t *testing.T) {
		got := run(StrategyMax)
		assert.InDelta(t, 1.0, got["A"], 1e-5)
		assert.InDelta(t, 0.75, got["B"], 1e-5)
		assert.InDelta(t, 1.0, got["C"], 1e-5)
	})

	t.Run("Min", func(t *testing.T) {
		got := run(StrategyMin)
		assert.InDelta(t, 0.0, got["A"], 1e-5)
		assert.InDelta(t, 0.5, got["B"], 1e-5)
		assert.InDelta(t, 0.0, got["C"], 1e-5)
	})

	t.Run("HarmonicMean", func(t *testing.T) {
		got := run(StrategyHarmonicMean)
		assert.InDelta(t, 0.0, got["A"], 1e-5)
		assert.InDelta(t, 0.6, got["B"], 1e-5) // 2*0.5*0.75/1.25
		assert.InDelta(t, 0.0, got["C"], 1e-5)
	})

	t.Run("GeometricMean", func(t *testing.T) {
		got := run(StrategyGeometricMean)
		assert.InDelta(t, 0.0, got["A"], 1e-5)
		assert.InDelta(t, 0.6123724, got["B"], 1e-5) // sqrt(0.5*0.75)
		assert.InDelta(t, 0.0, got["C"], 1e-5)
	})
}

func TestFuseGeometricMeanPreservesSign(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = StrategyGeometricMean
	cfg.Normalization = NormZScore

	dense := Side{Scores: map[model.ID]float32{"A": 0, "B": 1}, LowerIsBetter: true}
	sparse := Side{Scores: map[model.ID]float32{"A": 0, "B": 1}}
	// z-score: dense A=1, B=-1; sparse A=-1, B=1. Products are negative.

	scored, err := Fuse(dense, sparse, cfg)
	require.NoError(t, err)
	for _, s := range scored {
		assert.InDelta(t, -1.0, s.Fused, 1e-5)
	}
}

func TestFuseAllEqualScoresNormalizeToOne(t *testing.T) {
	dense := Side{Scores: map[model.ID]float32{"A": 5, "B": 5}, LowerIsBetter: true}
	scored, err := Fuse(dense, Side{}, DefaultConfig())
	require.NoError(t, err)
	for _, s := range scored {
		assert.InDelta(t, 1.0, s.NormDense, 1e-6)
	}
}

func TestFuseEmptySides(t *testing.T) {
	scored, err := Fuse(Side{}, Side{}, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, scored)
}

func TestFuseDeterministicOrdering(t *testing.T) {
	dense := Side{
		Scores:        map[model.ID]float32{"x": 1, "y": 1, "z": 1},
		LowerIsBetter: true,
	}
	for i := 0; i < 10; i++ {
		scored, err := Fuse(dense, Side{}, DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, []model.ID{"x", "y", "z"}, ids(scored))
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("AlphaOutOfRange", func(t *testing.T) {
		for _, alpha := range []float64{-0.1, 1.1} {
			cfg := DefaultConfig()
			cfg.Alpha = alpha
			_, err := Fuse(Side{}, Side{}, cfg)
			var ia *ErrInvalidAlpha
			require.ErrorAs(t, err, &ia)
			assert.Equal(t, alpha, ia.Alpha)
		}
	})

	t.Run("AlphaBoundsAreValid", func(t *testing.T) {
		for _, alpha := range []float64{0, 1} {
			cfg := DefaultConfig()
			cfg.Alpha = alpha
			assert.NoError(t, cfg.Validate())
		}
	})

	t.Run("UnknownStrategy", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Strategy = Strategy(99)
		_, err := Fuse(Side{}, Side{}, cfg)
		var us *ErrUnknownStrategy
		assert.ErrorAs(t, err, &us)
	})

	t.Run("UnknownNormalization", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Normalization = Normalization(9)
		assert.Error(t, cfg.Validate())
	})
}

func TestParseStrategyRoundtrip(t *testing.T) {
	for _, s := range []Strategy{
		StrategyWeightedSum,
		StrategyReciprocalRankFusion,
		StrategyDistributionBased,
		StrategyRelativeScore,
		StrategyMax,
		StrategyMin,
		StrategyHarmonicMean,
		StrategyGeometricMean,
	} {
		parsed, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStrategy("bogus")
	var us *ErrUnknownStrategy
	assert.ErrorAs(t, err, &us)
}

func TestFuseSideSymmetry(t *testing.T) {
	left := Side{Scores: map[model.ID]float32{"x": 0.2, "y": 0.9, "z": 0.4}}
	right := Side{Scores: map[model.ID]float32{"x": 0.7, "y": 0.1}}

	strategies := []Strategy{
		StrategyWeightedSum,
		StrategyMax,
		StrategyMin,
		StrategyHarmonicMean,
		StrategyGeometricMean,
	}

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Strategy = s
			cfg.Alpha = 0.3

			mirror := cfg
			mirror.Alpha = 1 - cfg.Alpha

			orig, err := Fuse(left, right, cfg)
			require.NoError(t, err)
			swapped, err := Fuse(right, left, mirror)
			require.NoError(t, err)

			require.Equal(t, len(orig), len(swapped))
			for i := range orig {
				assert.Equal(t, orig[i].ID, swapped[i].ID)
				assert.InDelta(t, orig[i].Fused, swapped[i].Fused, 1e-6)
			}
		})
	}
}
