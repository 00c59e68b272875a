package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naepdash/internal/dataset"
)

// buildSeries constructs a complete series from parallel score slices,
// with the same standard error at every point and year.
func buildSeries(state string, scores2019, scores2024 []float64, se float64) dataset.StateSeries {
	s := dataset.StateSeries{
		State:   state,
		Subject: dataset.SubjectMathematics,
		Grade:   dataset.Grade4,
	}
	for i, p := range dataset.Percentiles {
		s.Records = append(s.Records, dataset.PercentileRecord{
			State:      state,
			Subject:    s.Subject,
			Grade:      s.Grade,
			Percentile: p,
			Score2019:  scores2019[i],
			Score2024:  scores2024[i],
			SE2019:     se,
			SE2024:     se,
		})
	}
	return s
}

func TestSpreadChange(t *testing.T) {
	s := buildSeries("Alabama",
		[]float64{210, 220, 230, 240, 250},
		[]float64{205, 218, 232, 245, 262},
		2.0)

	diff, se := SpreadChange(s)
	// delta10 = -5, delta90 = +12
	assert.InDelta(t, 17.0, diff, 1e-9)
	// sqrt(4+4+4+4) = 4
	assert.InDelta(t, 4.0, se, 1e-9)
}

func TestIsSignificant(t *testing.T) {
	tests := []struct {
		name       string
		scores2024 []float64
		se         float64
		want       bool
	}{
		{
			// z = 17/4 = 4.25
			name:       "large spread change is significant",
			scores2024: []float64{205, 218, 232, 245, 262},
			se:         2.0,
			want:       true,
		},
		{
			// diff = 2, se = 4, z = 0.5
			name:       "small spread change is not significant",
			scores2024: []float64{210, 220, 230, 240, 252},
			se:         2.0,
			want:       false,
		},
		{
			// z = 17/4.0 at exactly the boundary would be >= 1.96;
			// diff = 7.84, se = 4 gives z = 1.96 exactly
			name:       "boundary z is significant",
			scores2024: []float64{210, 220, 230, 240, 257.84},
			se:         2.0,
			want:       true,
		},
		{
			name:       "zero standard error is never significant",
			scores2024: []float64{205, 218, 232, 245, 262},
			se:         0,
			want:       false,
		},
	}

	scores2019 := []float64{210, 220, 230, 240, 250}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := buildSeries("Alabama", scores2019, tt.scores2024, tt.se)
			assert.Equal(t, tt.want, IsSignificant(s))
		})
	}
}

func TestIsSignificantIsDeterministic(t *testing.T) {
	s := buildSeries("Alabama",
		[]float64{210, 220, 230, 240, 250},
		[]float64{205, 218, 232, 245, 262},
		2.0)

	first := IsSignificant(s)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, IsSignificant(s))
	}
}

func TestIsSignificantPrefersPrecomputedFlag(t *testing.T) {
	// z = 4.25 says significant, but the source table says otherwise
	s := buildSeries("Alabama",
		[]float64{210, 220, 230, 240, 250},
		[]float64{205, 218, 232, 245, 262},
		2.0)

	flag := false
	for i := range s.Records {
		s.Records[i].Significant = &flag
	}
	assert.False(t, IsSignificant(s))

	// A flag on only some records falls back to the z-test
	s.Records[2].Significant = nil
	assert.True(t, IsSignificant(s))
}

func TestIsSignificantDisagreeingFlagsFallBack(t *testing.T) {
	s := buildSeries("Alabama",
		[]float64{210, 220, 230, 240, 250},
		[]float64{210, 220, 230, 240, 252},
		2.0)

	yes, no := true, false
	for i := range s.Records {
		s.Records[i].Significant = &yes
	}
	s.Records[4].Significant = &no

	// disagreement means the flag is untrustworthy; z = 0.5 here
	assert.False(t, IsSignificant(s))
}

func TestSpreadChangeMissingTails(t *testing.T) {
	s := buildSeries("Alabama",
		[]float64{210, 220, 230, 240, 250},
		[]float64{205, 218, 232, 245, 262},
		2.0)
	s.Records = s.Records[1:4]

	diff, se := SpreadChange(s)
	require.Zero(t, diff)
	require.Zero(t, se)
	assert.False(t, IsSignificant(s))
}
