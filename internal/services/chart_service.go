// Package services orchestrates the dataset store, the selection
// session and the scoring package into the payloads the HTTP transport
// serves to the embedded frontend.
package services

import (
	"context"
	"log/slog"
	"math"

	"naepdash/internal/dataset"
	"naepdash/internal/infrastructure"
	"naepdash/internal/scoring"
	"naepdash/internal/session"
)

// Axis padding applied around the context's data extent.
const (
	xAxisPad = 2.0
	yAxisPad = 0.2
)

// selectStatesHint is surfaced when selected-states mode has an empty set.
const selectStatesHint = "Select one or more states to view data."

// ChartService builds chart payloads for a (subject, grade) context,
// applying the process-wide selection.
type ChartService struct {
	store     *dataset.Store
	selection *session.Selection
	metrics   *infrastructure.Metrics
	logger    *slog.Logger
}

// NewChartService creates a chart service with injected dependencies.
func NewChartService(store *dataset.Store, selection *session.Selection, metrics *infrastructure.Metrics, logger *slog.Logger) *ChartService {
	return &ChartService{
		store:     store,
		selection: selection,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "chart_service")),
	}
}

// Meta describes the dataset's option space for the sidebar.
type Meta struct {
	Subjects       []dataset.Subject `json:"subjects"`
	Grades         []dataset.Grade   `json:"grades"`
	States         []string          `json:"states"`
	DefaultSubject dataset.Subject   `json:"default_subject"`
	DefaultGrade   dataset.Grade     `json:"default_grade"`
}

// Meta returns sidebar options and defaults.
func (s *ChartService) Meta(ctx context.Context) Meta {
	return Meta{
		Subjects:       s.store.SubjectList(),
		Grades:         s.store.GradeList(),
		States:         s.store.StateList(),
		DefaultSubject: dataset.SubjectMathematics,
		DefaultGrade:   dataset.Grade8,
	}
}

// Chart is the full renderable payload for one context.
type Chart struct {
	Title      string           `json:"title"`
	XAxisTitle string           `json:"x_axis_title"`
	YAxisTitle string           `json:"y_axis_title"`
	XRange     [2]float64       `json:"x_range"`
	YRange     [2]float64       `json:"y_range"`
	ZeroLine   ZeroLine         `json:"zero_line"`
	Traces     []scoring.Trace  `json:"traces"`
	Hint       string           `json:"hint,omitempty"`
	Selection  session.Snapshot `json:"selection"`
}

// ZeroLine is the horizontal reference trace at y = 0 spanning the
// x-range of the context's data.
type ZeroLine struct {
	X0 float64 `json:"x0"`
	X1 float64 `json:"x1"`
	Y  float64 `json:"y"`
}

// Chart builds the payload for a subject/grade. Switching to a
// different context resets the selection to all-states first. Selected
// states lacking complete data for the context are omitted silently.
func (s *ChartService) Chart(ctx context.Context, subject dataset.Subject, grade dataset.Grade) (*Chart, error) {
	if !s.store.HasContext(subject, grade) {
		return nil, ErrContextNotFound
	}

	if s.selection.SetContext(subject, grade) {
		s.logger.InfoContext(ctx, "context changed, selection reset",
			slog.String("subject", string(subject)),
			slog.Int("grade", int(grade)))
	}

	all := s.store.Series(subject, grade)
	snapshot := s.selection.Snapshot()

	chart := &Chart{
		Title:      string(subject) + " Scores for Grade " + gradeString(grade),
		XAxisTitle: "2019 Score",
		YAxisTitle: "Change (2024 - 2019)",
		XRange:     xRange(all),
		YRange:     yRange(all),
		Traces:     []scoring.Trace{},
		Selection:  snapshot,
	}
	chart.ZeroLine = ZeroLine{X0: chart.XRange[0], X1: chart.XRange[1], Y: 0}

	if snapshot.Mode == session.ModeSelectedStates && len(snapshot.Selected) == 0 {
		chart.Hint = selectStatesHint
		return chart, nil
	}

	for _, series := range all {
		if !s.selection.Includes(series.State) {
			continue
		}
		trace, err := scoring.BuildTrace(series)
		if err != nil {
			// Store only hands out complete series; treat anything else
			// as a data-quality gap, not a failure.
			s.logger.WarnContext(ctx, "skipping state",
				slog.String("state", series.State),
				slog.String("error", err.Error()))
			s.metrics.SkippedStates.Inc()
			continue
		}
		chart.Traces = append(chart.Traces, trace)
	}

	s.metrics.ChartBuilds.Inc()
	s.logger.InfoContext(ctx, "chart built",
		slog.String("subject", string(subject)),
		slog.Int("grade", int(grade)),
		slog.String("mode", string(snapshot.Mode)),
		slog.Int("traces", len(chart.Traces)))

	return chart, nil
}

// UpdateSelection applies a sidebar mode/state change and returns the
// resulting selection state.
func (s *ChartService) UpdateSelection(ctx context.Context, mode string, states []string) (session.Snapshot, error) {
	parsed, err := session.ParseMode(mode)
	if err != nil {
		return session.Snapshot{}, ErrUnknownMode
	}

	s.selection.SetMode(parsed)
	s.selection.UpdateSelection(states)

	snapshot := s.selection.Snapshot()
	s.logger.InfoContext(ctx, "selection updated",
		slog.String("mode", string(snapshot.Mode)),
		slog.Int("selected", len(snapshot.Selected)))
	return snapshot, nil
}

// Selection returns the current selection state.
func (s *ChartService) Selection(ctx context.Context) session.Snapshot {
	return s.selection.Snapshot()
}

// xRange spans the context's 2019 scores, padded by two score points.
func xRange(all []dataset.StateSeries) [2]float64 {
	min, max := extent(all, func(r dataset.PercentileRecord) float64 { return r.Score2019 })
	return [2]float64{min - xAxisPad, max + xAxisPad}
}

// yRange spans the context's score changes, padded slightly.
func yRange(all []dataset.StateSeries) [2]float64 {
	min, max := extent(all, func(r dataset.PercentileRecord) float64 { return r.ScoreChange() })
	return [2]float64{min - yAxisPad, max + yAxisPad}
}

func extent(all []dataset.StateSeries, value func(dataset.PercentileRecord) float64) (float64, float64) {
	min, max := math.Inf(1), math.Inf(-1)
	for _, series := range all {
		for _, r := range series.Records {
			v := value(r)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	if math.IsInf(min, 1) {
		return 0, 0
	}
	return min, max
}

func gradeString(g dataset.Grade) string {
	switch g {
	case dataset.Grade4:
		return "4"
	case dataset.Grade8:
		return "8"
	default:
		return "?"
	}
}
