package rank

import (
	"fmt"

	"github.com/hupe1980/vexo/fusion"
	"github.com/hupe1980/vexo/model"
)

// Results converts fused entries into caller-facing results, applying
// autocut and optionally attaching explanations. autocutN <= 0 disables
// truncation; explanations are pure derivations of the fusion output.
func Results(scored []fusion.Scored, cfg fusion.Config, autocutN int, explain bool) []model.FusedResult {
	scores := make([]float32, len(scored))
	for i, s := range scored {
		scores[i] = s.Fused
	}
	cut := AutocutIndex(scores, autocutN)

	out := make([]model.FusedResult, cut)
	for i, s := range scored[:cut] {
		out[i] = model.FusedResult{ID: s.ID, Score: s.Fused}
		if explain {
			out[i].Explanation = Explain(s, cfg, i+1)
		}
	}
	return out
}

// Explain builds the structured explanation for one fused entry at the
// given 1-based rank. It is computable for every strategy.
func Explain(s fusion.Scored, cfg fusion.Config, rank int) *model.Explanation {
	e := &model.Explanation{
		Rank:             rank,
		NormalizedDense:  s.NormDense,
		NormalizedSparse: s.NormSparse,
		Normalization:    normalizationName(cfg),
		Formula:          formula(s, cfg),
		Fused:            s.Fused,
	}
	if s.HasDense {
		raw := s.RawDense
		e.RawDense = &raw
	}
	if s.HasSparse {
		raw := s.RawSparse
		e.RawSparse = &raw
	}
	return e
}

func normalizationName(cfg fusion.Config) string {
	switch cfg.Strategy {
	case fusion.StrategyReciprocalRankFusion:
		return "none"
	case fusion.StrategyDistributionBased:
		return "distribution"
	case fusion.StrategyRelativeScore:
		return "min-max"
	default:
		return cfg.Normalization.String()
	}
}

// formula renders the fusion formula with actual operands substituted.
func formula(s fusion.Scored, cfg fusion.Config) string {
	d, sp := s.NormDense, s.NormSparse
	switch cfg.Strategy {
	case fusion.StrategyWeightedSum, fusion.StrategyRelativeScore:
		return fmt.Sprintf("%.2f*%.4f + %.2f*%.4f", cfg.Alpha, d, 1-cfg.Alpha, sp)
	case fusion.StrategyReciprocalRankFusion:
		return fmt.Sprintf("%.6f + %.6f", d, sp)
	case fusion.StrategyDistributionBased:
		return fmt.Sprintf("%.4f + %.4f", d, sp)
	case fusion.StrategyMax:
		return fmt.Sprintf("max(%.4f, %.4f)", d, sp)
	case fusion.StrategyMin:
		return fmt.Sprintf("min(%.4f, %.4f)", d, sp)
	case fusion.StrategyHarmonicMean:
		return fmt.Sprintf("2*%.4f*%.4f/(%.4f+%.4f)", d, sp, d, sp)
	case fusion.StrategyGeometricMean:
		return fmt.Sprintf("sign*sqrt(|%.4f*%.4f|)", d, sp)
	default:
		return ""
	}
}
