// Package scoring derives the chart-facing values from a state's
// percentile series: the significance flag on the 10th-90th spread
// change, and the ordered trace points.
package scoring

import (
	"math"

	"naepdash/internal/dataset"
)

// zCritical is the two-tailed critical value at alpha = 0.05.
const zCritical = 1.96

// SpreadChange returns the difference-in-differences between the 90th
// and 10th percentile score changes, and its combined standard error.
// Standard errors are treated as independent across years and
// percentiles; this is a simplifying policy, not a verified property of
// the source survey design.
func SpreadChange(s dataset.StateSeries) (diff, se float64) {
	p10, ok10 := s.At(10)
	p90, ok90 := s.At(90)
	if !ok10 || !ok90 {
		return 0, 0
	}

	diff = p90.ScoreChange() - p10.ScoreChange()
	se = math.Sqrt(p10.SE2019*p10.SE2019 + p10.SE2024*p10.SE2024 +
		p90.SE2019*p90.SE2019 + p90.SE2024*p90.SE2024)
	return diff, se
}

// IsSignificant reports whether the spread change is statistically
// distinguishable from zero at alpha = 0.05.
//
// When the source table carries a precomputed flag on every record of
// the series, that flag wins over the derived z-test: upstream may have
// used the survey's joint standard errors, which this approximation
// cannot reconstruct. A zero combined standard error yields false.
func IsSignificant(s dataset.StateSeries) bool {
	if flag, ok := precomputedFlag(s); ok {
		return flag
	}

	diff, se := SpreadChange(s)
	if se == 0 {
		return false
	}
	return math.Abs(diff/se) >= zCritical
}

// precomputedFlag returns the source-supplied significance flag when
// every record of the series carries one and they agree.
func precomputedFlag(s dataset.StateSeries) (bool, bool) {
	if len(s.Records) == 0 {
		return false, false
	}
	first := s.Records[0].Significant
	if first == nil {
		return false, false
	}
	for _, r := range s.Records[1:] {
		if r.Significant == nil || *r.Significant != *first {
			return false, false
		}
	}
	return *first, true
}
