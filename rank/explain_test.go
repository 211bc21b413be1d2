package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vexo/fusion"
)

func TestResults(t *testing.T) {
	scored := []fusion.Scored{
		{ID: "A", Fused: 0.95},
		{ID: "B", Fused: 0.93},
		{ID: "C", Fused: 0.91},
		{ID: "D", Fused: 0.40},
		{ID: "E", Fused: 0.38},
	}

	t.Run("AutocutApplied", func(t *testing.T) {
		out := Results(scored, fusion.DefaultConfig(), 1, false)
		require.Len(t, out, 3)
		assert.Equal(t, "A", string(out[0].ID))
		assert.Nil(t, out[0].Explanation)
	})

	t.Run("AutocutDisabled", func(t *testing.T) {
		out := Results(scored, fusion.DefaultConfig(), 0, false)
		assert.Len(t, out, 5)
	})

	t.Run("ExplanationsCarryRanks", func(t *testing.T) {
		out := Results(scored, fusion.DefaultConfig(), 0, true)
		for i, r := range out {
			require.NotNil(t, r.Explanation)
			assert.Equal(t, i+1, r.Explanation.Rank)
			assert.Equal(t, r.Score, r.Explanation.Fused)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		out := Results(nil, fusion.DefaultConfig(), 1, true)
		assert.Empty(t, out)
	})
}

func TestExplainRawScorePointers(t *testing.T) {
	cfg := fusion.DefaultConfig()

	t.Run("BothSides", func(t *testing.T) {
		e := Explain(fusion.Scored{
			ID: "A", Fused: 0.5,
			HasDense: true, RawDense: 0.9, NormDense: 1,
			HasSparse: true, RawSparse: 3.2, NormSparse: 0.25,
		}, cfg, 1)

		require.NotNil(t, e.RawDense)
		require.NotNil(t, e.RawSparse)
		assert.InDelta(t, 0.9, *e.RawDense, 1e-6)
		assert.InDelta(t, 3.2, *e.RawSparse, 1e-6)
		assert.InDelta(t, 1.0, e.NormalizedDense, 1e-6)
		assert.InDelta(t, 0.25, e.NormalizedSparse, 1e-6)
	})

	t.Run("MissingSideIsNil", func(t *testing.T) {
		e := Explain(fusion.Scored{ID: "B", HasDense: true, RawDense: 0.1}, cfg, 2)
		assert.NotNil(t, e.RawDense)
		assert.Nil(t, e.RawSparse)
		assert.Equal(t, 2, e.Rank)
	})
}

func TestExplainNormalizationName(t *testing.T) {
	tests := []struct {
		strategy fusion.Strategy
		norm     fusion.Normalization
		expected string
	}{
		{fusion.StrategyWeightedSum, fusion.NormMinMax, "min-max"},
		{fusion.StrategyWeightedSum, fusion.NormZScore, "z-score"},
		{fusion.StrategyReciprocalRankFusion, fusion.NormMinMax, "none"},
		{fusion.StrategyDistributionBased, fusion.NormMinMax, "distribution"},
		{fusion.StrategyRelativeScore, fusion.NormZScore, "min-max"},
	}

	for _, tt := range tests {
		cfg := fusion.Config{Strategy: tt.strategy, Alpha: 0.5, Normalization: tt.norm}
		e := Explain(fusion.Scored{ID: "A"}, cfg, 1)
		assert.Equal(t, tt.expected, e.Normalization, tt.strategy.String())
	}
}

func TestExplainFormula(t *testing.T) {
	s := fusion.Scored{
		ID:        "A",
		NormDense: 0.8333, NormSparse: 1,
		HasDense: true, HasSparse: true,
	}

	tests := []struct {
		strategy fusion.Strategy
		expected string
	}{
		{fusion.StrategyWeightedSum, "0.50*0.8333 + 0.50*1.0000"},
		{fusion.StrategyRelativeScore, "0.50*0.8333 + 0.50*1.0000"},
		{fusion.StrategyDistributionBased, "0.8333 + 1.0000"},
		{fusion.StrategyMax, "max(0.8333, 1.0000)"},
		{fusion.StrategyMin, "min(0.8333, 1.0000)"},
		{fusion.StrategyHarmonicMean, "2*0.8333*1.0000/(0.8333+1.0000)"},
		{fusion.StrategyGeometricMean, "sign*sqrt(|0.8333*1.0000|)"},
	}

	for _, tt := range tests {
		cfg := fusion.Config{Strategy: tt.strategy, Alpha: 0.5, Normalization: fusion.NormMinMax}
		e := Explain(s, cfg, 1)
		assert.Equal(t, tt.expected, e.Formula, tt.strategy.String())
	}
}
