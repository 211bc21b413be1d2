package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAutocutIndex(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float32
		n        int
		expected int
	}{
		{
			name:     "CutAfterFirstJump",
			scores:   []float32{0.95, 0.93, 0.91, 0.40, 0.38},
			n:        1,
			expected: 3,
		},
		{
			name:     "SecondJump",
			scores:   []float32{1.0, 0.98, 0.7, 0.68, 0.3, 0.28},
			n:        2,
			expected: 4,
		},
		{
			name:     "MoreJumpsRequestedThanPresent",
			scores:   []float32{1.0, 0.98, 0.7, 0.68, 0.3, 0.28},
			n:        3,
			expected: 6,
		},
		{
			name:     "Disabled",
			scores:   []float32{0.95, 0.93, 0.91, 0.40, 0.38},
			n:        0,
			expected: 5,
		},
		{
			name:     "NegativeNDisabled",
			scores:   []float32{0.95, 0.40},
			n:        -1,
			expected: 2,
		},
		{
			name:     "SingleScoreUntouched",
			scores:   []float32{0.5},
			n:        1,
			expected: 1,
		},
		{
			name:     "EmptyUntouched",
			scores:   nil,
			n:        1,
			expected: 0,
		},
		{
			name:     "UniformScoresNoJump",
			scores:   []float32{0.5, 0.5, 0.5, 0.5},
			n:        1,
			expected: 4,
		},
		{
			name: "DropsBelowAbsoluteFloorAreNoise",
			// All drops are 0.001: above twice a zero-ish median is not
			// enough, the absolute floor keeps them from counting.
			scores:   []float32{0.500, 0.499, 0.498, 0.497},
			n:        1,
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AutocutIndex(tt.scores, tt.n))
		})
	}
}

func TestAutocutIdempotent(t *testing.T) {
	scores := []float32{0.95, 0.93, 0.91, 0.40, 0.38}

	once := Autocut(scores, 1)
	assert.Equal(t, []float32{0.95, 0.93, 0.91}, once)

	twice := Autocut(once, 1)
	assert.Equal(t, once, twice)
}

func TestAutocutKeepsAtLeastOne(t *testing.T) {
	// The jump sits right after the top score; the cut never empties the list.
	got := Autocut([]float32{1.0, 0.1, 0.09, 0.08}, 1)
	assert.Equal(t, []float32{1.0}, got)
}
