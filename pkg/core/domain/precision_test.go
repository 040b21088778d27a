package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecimalRounder(t *testing.T) {
	r3 := NewRounder(3)
	assert.Equal(t, 3, r3.Decimals())
	assert.Equal(t, 0.124, r3.Round(0.12367))
	assert.Equal(t, -0.124, r3.Round(-0.12367))
	assert.Equal(t, 0.0, r3.Round(0.0004))
	assert.False(t, math.Signbit(r3.Round(-0.0004)), "negative zero leaked")

	r6 := NewRounder(TablePrecision)
	assert.Equal(t, 0.123457, r6.Round(0.1234567))

	assert.Equal(t, 0.0, r3.Round(math.NaN()))
	assert.Equal(t, 0.0, r3.Round(math.Inf(-1)))
}

func TestCoverageFrameRows(t *testing.T) {
	f := CoverageFrame{
		Time: []string{"a", "b"},
		X:    []float64{1, 2},
		Y:    []float64{3, 4},
		Z:    []float64{5, 6},
	}
	assert.Equal(t, []Row{{"a", 1, 3, 5}, {"b", 2, 4, 6}}, f.Rows())
	assert.Empty(t, CoverageFrame{}.Rows())
}
