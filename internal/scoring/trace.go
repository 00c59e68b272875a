package scoring

import (
	"fmt"

	"naepdash/internal/dataset"
)

// Point is one rendered marker: x is the 2019 baseline score, y the
// 2024 minus 2019 change. The remaining fields feed the tooltip.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Percentile int     `json:"percentile"`
	Score2019  float64 `json:"score_2019"`
	Score2024  float64 `json:"score_2024"`
}

// Trace is one state's connected line on the chart, visiting
// percentiles in ascending order (10th through 90th).
type Trace struct {
	State       string  `json:"state"`
	Label       string  `json:"label"`
	Significant bool    `json:"significant"`
	Points      []Point `json:"points"`
}

// BuildTrace converts a complete series into its trace. The legend
// label is the state name, suffixed with " *" when the spread change is
// significant. Incomplete series are rejected so callers can skip the
// state rather than render a partial line.
func BuildTrace(s dataset.StateSeries) (Trace, error) {
	if !s.Complete() {
		return Trace{}, fmt.Errorf("incomplete percentile series for %s", s.State)
	}

	t := Trace{
		State:       s.State,
		Significant: IsSignificant(s),
		Points:      make([]Point, 0, len(s.Records)),
	}

	t.Label = s.State
	if t.Significant {
		t.Label += " *"
	}

	for _, r := range s.Records {
		t.Points = append(t.Points, Point{
			X:          r.Score2019,
			Y:          r.ScoreChange(),
			Percentile: r.Percentile,
			Score2019:  r.Score2019,
			Score2024:  r.Score2024,
		})
	}

	return t, nil
}
