package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naepdash/internal/dataset"
	"naepdash/internal/infrastructure"
	"naepdash/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// contextRecords builds a complete series for one state and context with
// fixed 2019 scores 210..250 and the given 2024 scores.
func contextRecords(state string, subject dataset.Subject, grade dataset.Grade, scores2024 []float64) []dataset.PercentileRecord {
	scores2019 := []float64{210, 220, 230, 240, 250}
	recs := make([]dataset.PercentileRecord, 0, 5)
	for i, p := range dataset.Percentiles {
		recs = append(recs, dataset.PercentileRecord{
			State:      state,
			Subject:    subject,
			Grade:      grade,
			Percentile: p,
			Score2019:  scores2019[i],
			Score2024:  scores2024[i],
			SE2019:     2.0,
			SE2024:     2.0,
		})
	}
	return recs
}

func newTestService(t *testing.T) *ChartService {
	t.Helper()

	var records []dataset.PercentileRecord
	// Alabama has a significant spread change (z = 4.25); Texas does not
	records = append(records, contextRecords("Alabama", dataset.SubjectMathematics, dataset.Grade8,
		[]float64{205, 218, 232, 245, 262})...)
	records = append(records, contextRecords("Texas", dataset.SubjectMathematics, dataset.Grade8,
		[]float64{211, 221, 231, 241, 251})...)
	// Texas is the only state with grade-8 reading data
	records = append(records, contextRecords("Texas", dataset.SubjectReading, dataset.Grade8,
		[]float64{212, 222, 232, 242, 252})...)

	store := dataset.NewStore(records, testLogger())
	sel := session.New(dataset.SubjectMathematics, dataset.Grade8)
	return NewChartService(store, sel, infrastructure.NewMetrics(), testLogger())
}

func TestMeta(t *testing.T) {
	svc := newTestService(t)

	meta := svc.Meta(context.Background())
	assert.Equal(t, []dataset.Subject{dataset.SubjectMathematics, dataset.SubjectReading}, meta.Subjects)
	assert.Equal(t, []dataset.Grade{dataset.Grade8}, meta.Grades)
	assert.Equal(t, []string{"Alabama", "Texas"}, meta.States)
	assert.Equal(t, dataset.SubjectMathematics, meta.DefaultSubject)
	assert.Equal(t, dataset.Grade8, meta.DefaultGrade)
}

func TestChartLayout(t *testing.T) {
	svc := newTestService(t)

	chart, err := svc.Chart(context.Background(), dataset.SubjectMathematics, dataset.Grade8)
	require.NoError(t, err)

	assert.Equal(t, "Mathematics Scores for Grade 8", chart.Title)
	assert.Equal(t, "2019 Score", chart.XAxisTitle)
	assert.Equal(t, "Change (2024 - 2019)", chart.YAxisTitle)

	// 2019 scores span 210..250, padded by 2
	assert.Equal(t, [2]float64{208, 252}, chart.XRange)
	// changes span -5..12 (Alabama), padded by 0.2
	assert.InDelta(t, -5.2, chart.YRange[0], 1e-9)
	assert.InDelta(t, 12.2, chart.YRange[1], 1e-9)

	// zero line spans the x-range at y = 0
	assert.Equal(t, chart.XRange[0], chart.ZeroLine.X0)
	assert.Equal(t, chart.XRange[1], chart.ZeroLine.X1)
	assert.Zero(t, chart.ZeroLine.Y)

	require.Len(t, chart.Traces, 2)
	assert.Equal(t, "Alabama *", chart.Traces[0].Label)
	assert.Equal(t, "Texas", chart.Traces[1].Label)
	assert.Empty(t, chart.Hint)
}

func TestChartUnknownContext(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Chart(context.Background(), dataset.SubjectReading, dataset.Grade4)
	assert.ErrorIs(t, err, ErrContextNotFound)
}

func TestChartSelectedStatesOmitsMissingData(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Ohio has no data at all; only Texas has grade-8 reading
	_, err := svc.UpdateSelection(ctx, "selected_states", []string{"Texas", "Ohio"})
	require.NoError(t, err)

	chart, err := svc.Chart(ctx, dataset.SubjectMathematics, dataset.Grade8)
	require.NoError(t, err)
	require.Len(t, chart.Traces, 1)
	assert.Equal(t, "Texas", chart.Traces[0].State)
	assert.Empty(t, chart.Hint)
}

func TestChartEmptySelectionShowsHint(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateSelection(ctx, "selected_states", nil)
	require.NoError(t, err)

	chart, err := svc.Chart(ctx, dataset.SubjectMathematics, dataset.Grade8)
	require.NoError(t, err)
	assert.Empty(t, chart.Traces)
	assert.Equal(t, "Select one or more states to view data.", chart.Hint)

	// ranges are still computed so the frame renders sensibly
	assert.Equal(t, [2]float64{208, 252}, chart.XRange)
}

func TestChartContextChangeResetsSelection(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateSelection(ctx, "selected_states", []string{"Alabama"})
	require.NoError(t, err)

	// switching subject resets to all-states
	chart, err := svc.Chart(ctx, dataset.SubjectReading, dataset.Grade8)
	require.NoError(t, err)
	assert.Equal(t, session.ModeAllStates, chart.Selection.Mode)
	assert.Empty(t, chart.Selection.Selected)
	require.Len(t, chart.Traces, 1)
	assert.Equal(t, "Texas", chart.Traces[0].State)
}

func TestChartRepeatedFetchKeepsSelection(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateSelection(ctx, "selected_states", []string{"Alabama"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		chart, err := svc.Chart(ctx, dataset.SubjectMathematics, dataset.Grade8)
		require.NoError(t, err)
		assert.Equal(t, session.ModeSelectedStates, chart.Selection.Mode)
		assert.Equal(t, []string{"Alabama"}, chart.Selection.Selected)
		require.Len(t, chart.Traces, 1)
	}
}

func TestUpdateSelectionUnknownMode(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UpdateSelection(context.Background(), "some_states", nil)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestSelectionSnapshot(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	snap := svc.Selection(ctx)
	assert.Equal(t, session.ModeAllStates, snap.Mode)

	_, err := svc.UpdateSelection(ctx, "selected_states", []string{"Texas", "Alabama"})
	require.NoError(t, err)

	snap = svc.Selection(ctx)
	assert.Equal(t, session.ModeSelectedStates, snap.Mode)
	assert.Equal(t, []string{"Alabama", "Texas"}, snap.Selected)
}
