package dataset

import (
	"log/slog"
	"sort"
)

type contextKey struct {
	Subject Subject
	Grade   Grade
}

// Store indexes loaded records by (subject, grade) and state, keeping
// only complete five-percentile series. It is immutable after
// construction and safe for concurrent reads.
type Store struct {
	series   map[contextKey]map[string]StateSeries
	subjects []Subject
	grades   []Grade
	states   []string
	skipped  int
}

// NewStore builds the index. States whose series for a context is
// missing any of the five percentiles are excluded from that context
// and logged; duplicate percentile rows keep the first occurrence.
func NewStore(records []PercentileRecord, logger *slog.Logger) *Store {
	grouped := make(map[contextKey]map[string][]PercentileRecord)
	subjectSet := make(map[Subject]bool)
	gradeSet := make(map[Grade]bool)
	stateSet := make(map[string]bool)

	for _, rec := range records {
		key := contextKey{rec.Subject, rec.Grade}
		if grouped[key] == nil {
			grouped[key] = make(map[string][]PercentileRecord)
		}
		grouped[key][rec.State] = append(grouped[key][rec.State], rec)
		subjectSet[rec.Subject] = true
		gradeSet[rec.Grade] = true
		stateSet[rec.State] = true
	}

	s := &Store{series: make(map[contextKey]map[string]StateSeries)}

	for key, byState := range grouped {
		s.series[key] = make(map[string]StateSeries, len(byState))
		for state, recs := range byState {
			series := assemble(state, key, recs)
			if !series.Complete() {
				s.skipped++
				logger.Warn("excluding state with incomplete percentile series",
					slog.String("state", state),
					slog.String("subject", string(key.Subject)),
					slog.Int("grade", int(key.Grade)),
					slog.Int("records", len(recs)))
				continue
			}
			s.series[key][state] = series
		}
	}

	for subj := range subjectSet {
		s.subjects = append(s.subjects, subj)
	}
	sort.Slice(s.subjects, func(i, j int) bool { return s.subjects[i] < s.subjects[j] })

	for g := range gradeSet {
		s.grades = append(s.grades, g)
	}
	sort.Slice(s.grades, func(i, j int) bool { return s.grades[i] < s.grades[j] })

	for state := range stateSet {
		s.states = append(s.states, state)
	}
	sort.Strings(s.states)

	return s
}

// assemble orders a state's records by ascending percentile, dropping
// duplicates after the first.
func assemble(state string, key contextKey, recs []PercentileRecord) StateSeries {
	sort.Slice(recs, func(i, j int) bool { return recs[i].Percentile < recs[j].Percentile })

	deduped := recs[:0:0]
	for _, r := range recs {
		if len(deduped) > 0 && deduped[len(deduped)-1].Percentile == r.Percentile {
			continue
		}
		deduped = append(deduped, r)
	}

	return StateSeries{State: state, Subject: key.Subject, Grade: key.Grade, Records: deduped}
}

// SubjectList returns the subjects present in the dataset, sorted.
func (s *Store) SubjectList() []Subject {
	return append([]Subject(nil), s.subjects...)
}

// GradeList returns the grades present in the dataset, ascending.
func (s *Store) GradeList() []Grade {
	return append([]Grade(nil), s.grades...)
}

// StateList returns every state seen anywhere in the dataset, sorted.
func (s *Store) StateList() []string {
	return append([]string(nil), s.states...)
}

// HasContext reports whether any complete series exists for the context.
func (s *Store) HasContext(subject Subject, grade Grade) bool {
	return len(s.series[contextKey{subject, grade}]) > 0
}

// Series returns all complete series for a context, sorted by state.
func (s *Store) Series(subject Subject, grade Grade) []StateSeries {
	byState := s.series[contextKey{subject, grade}]
	out := make([]StateSeries, 0, len(byState))
	for _, series := range byState {
		out = append(out, series)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out
}

// SeriesFor returns one state's series for a context, if complete data exists.
func (s *Store) SeriesFor(subject Subject, grade Grade, state string) (StateSeries, bool) {
	series, ok := s.series[contextKey{subject, grade}][state]
	return series, ok
}

// SkippedStates reports how many (state, context) series were excluded
// for incomplete data.
func (s *Store) SkippedStates() int {
	return s.skipped
}
