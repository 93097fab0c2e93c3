package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateDefaultRatio(t *testing.T) {
	e := NewEstimator()

	assert.Equal(t, 25, e.Estimate(100))
	assert.Equal(t, 0, e.Estimate(0))
	// 4 bytes per token, floored.
	assert.Equal(t, 0, e.Estimate(3))
	assert.Equal(t, 1, e.Estimate(4))
	assert.Equal(t, 1, e.Estimate(7))
}

func TestEstimateCustomRatio(t *testing.T) {
	e := NewEstimatorWithRatio(0.5)
	assert.Equal(t, 50, e.Estimate(100))
}

func TestEstimateNegativeSize(t *testing.T) {
	e := NewEstimator()
	assert.Equal(t, 0, e.Estimate(-10))
}
