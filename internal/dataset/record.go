// Package dataset loads and indexes the NAEP percentile score table the
// dashboard is built on: one row per (state, subject, grade, percentile)
// holding 2019 and 2024 scores with their standard errors.
package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Subject identifies an assessed subject.
type Subject string

const (
	SubjectMathematics Subject = "Mathematics"
	SubjectReading     Subject = "Reading"
)

// Subjects lists all supported subjects in display order.
var Subjects = []Subject{SubjectMathematics, SubjectReading}

// ParseSubject normalizes a subject cell or query value.
func ParseSubject(s string) (Subject, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "math", "mathematics":
		return SubjectMathematics, nil
	case "reading":
		return SubjectReading, nil
	default:
		return "", fmt.Errorf("unknown subject %q", s)
	}
}

// Grade identifies an assessed grade level.
type Grade int

const (
	Grade4 Grade = 4
	Grade8 Grade = 8
)

// Grades lists all supported grades in display order.
var Grades = []Grade{Grade4, Grade8}

// ParseGrade normalizes a grade cell or query value.
func ParseGrade(v int) (Grade, error) {
	switch Grade(v) {
	case Grade4, Grade8:
		return Grade(v), nil
	default:
		return 0, fmt.Errorf("unknown grade %d", v)
	}
}

// Percentiles are the reported positions in the score distribution,
// in the order traces visit them.
var Percentiles = []int{10, 25, 50, 75, 90}

func validPercentile(p int) bool {
	for _, q := range Percentiles {
		if p == q {
			return true
		}
	}
	return false
}

// PercentileRecord is one immutable row of the source table.
type PercentileRecord struct {
	State      string
	Subject    Subject
	Grade      Grade
	Percentile int
	Score2019  float64
	Score2024  float64
	SE2019     float64
	SE2024     float64

	// Significant is the precomputed significance flag some source
	// tables carry for the 10th-90th spread change. When present on a
	// full series it is preferred over the derived z-test.
	Significant *bool
}

// ScoreChange returns the 2024 minus 2019 score difference.
func (r PercentileRecord) ScoreChange() float64 {
	return r.Score2024 - r.Score2019
}

// StateSeries holds one state's five percentile records for a
// (subject, grade) context, sorted by ascending percentile.
type StateSeries struct {
	State   string
	Subject Subject
	Grade   Grade
	Records []PercentileRecord
}

// At returns the record for the given percentile.
func (s StateSeries) At(percentile int) (PercentileRecord, bool) {
	for _, r := range s.Records {
		if r.Percentile == percentile {
			return r, true
		}
	}
	return PercentileRecord{}, false
}

// Complete reports whether the series covers every reported percentile
// exactly once. Incomplete series are excluded from the chart.
func (s StateSeries) Complete() bool {
	if len(s.Records) != len(Percentiles) {
		return false
	}
	for i, p := range Percentiles {
		if s.Records[i].Percentile != p {
			return false
		}
	}
	return true
}

// ErrEmptyDataset is returned when loading yields no usable rows.
var ErrEmptyDataset = errors.New("dataset contains no usable rows")
