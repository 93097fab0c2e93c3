package generate

import "math"

// DefaultTokensPerByte is the chars-per-token heuristic (roughly 4 bytes
// per token). Relative bookkeeping only, not billing-grade.
const DefaultTokensPerByte = 0.25

// Estimator maps byte sizes to approximate token counts. Pure and
// monotonic: a larger size never yields fewer tokens.
type Estimator struct {
	tokensPerByte float64
}

func NewEstimator() *Estimator {
	return &Estimator{tokensPerByte: DefaultTokensPerByte}
}

// NewEstimatorWithRatio lets tests and callers override the heuristic.
func NewEstimatorWithRatio(tokensPerByte float64) *Estimator {
	if tokensPerByte <= 0 {
		tokensPerByte = DefaultTokensPerByte
	}
	return &Estimator{tokensPerByte: tokensPerByte}
}

func (e *Estimator) Estimate(sizeBytes int64) int {
	if sizeBytes <= 0 {
		return 0
	}
	return int(math.Floor(float64(sizeBytes) * e.tokensPerByte))
}
