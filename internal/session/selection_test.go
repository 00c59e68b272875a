package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naepdash/internal/dataset"
)

func TestParseMode(t *testing.T) {
	for _, s := range []string{"all_states", "selected_states"} {
		mode, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), mode)
	}

	_, err := ParseMode("some_states")
	assert.Error(t, err)
	_, err = ParseMode("")
	assert.Error(t, err)
}

func TestNewStartsInAllStatesMode(t *testing.T) {
	sel := New(dataset.SubjectMathematics, dataset.Grade8)

	snap := sel.Snapshot()
	assert.Equal(t, dataset.SubjectMathematics, snap.Subject)
	assert.Equal(t, dataset.Grade8, snap.Grade)
	assert.Equal(t, ModeAllStates, snap.Mode)
	assert.Empty(t, snap.Selected)
}

func TestSetContextResetsSelection(t *testing.T) {
	sel := New(dataset.SubjectMathematics, dataset.Grade8)
	sel.SetMode(ModeSelectedStates)
	sel.UpdateSelection([]string{"Texas", "Ohio"})

	tests := []struct {
		name    string
		subject dataset.Subject
		grade   dataset.Grade
	}{
		{"subject change", dataset.SubjectReading, dataset.Grade8},
		{"grade change", dataset.SubjectMathematics, dataset.Grade4},
		{"both change", dataset.SubjectReading, dataset.Grade4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := New(dataset.SubjectMathematics, dataset.Grade8)
			sel.SetMode(ModeSelectedStates)
			sel.UpdateSelection([]string{"Texas", "Ohio"})

			changed := sel.SetContext(tt.subject, tt.grade)
			require.True(t, changed)

			snap := sel.Snapshot()
			assert.Equal(t, ModeAllStates, snap.Mode)
			assert.Empty(t, snap.Selected)
		})
	}
}

func TestSetContextSameContextKeepsSelection(t *testing.T) {
	sel := New(dataset.SubjectMathematics, dataset.Grade8)
	sel.SetMode(ModeSelectedStates)
	sel.UpdateSelection([]string{"Texas"})

	changed := sel.SetContext(dataset.SubjectMathematics, dataset.Grade8)
	assert.False(t, changed)

	snap := sel.Snapshot()
	assert.Equal(t, ModeSelectedStates, snap.Mode)
	assert.Equal(t, []string{"Texas"}, snap.Selected)
}

func TestIncludes(t *testing.T) {
	sel := New(dataset.SubjectMathematics, dataset.Grade8)

	// all-states mode includes everything
	assert.True(t, sel.Includes("Texas"))
	assert.True(t, sel.Includes("Nowhere"))

	sel.SetMode(ModeSelectedStates)
	assert.False(t, sel.Includes("Texas"))

	sel.UpdateSelection([]string{"Texas", "Ohio"})
	assert.True(t, sel.Includes("Texas"))
	assert.True(t, sel.Includes("Ohio"))
	assert.False(t, sel.Includes("Alabama"))
}

func TestUpdateSelectionReplacesSet(t *testing.T) {
	sel := New(dataset.SubjectMathematics, dataset.Grade8)
	sel.SetMode(ModeSelectedStates)

	sel.UpdateSelection([]string{"Texas", "Ohio"})
	sel.UpdateSelection([]string{"Alabama"})

	snap := sel.Snapshot()
	assert.Equal(t, []string{"Alabama"}, snap.Selected)
	assert.False(t, sel.Includes("Texas"))
}

func TestSnapshotSortsSelected(t *testing.T) {
	sel := New(dataset.SubjectMathematics, dataset.Grade8)
	sel.UpdateSelection([]string{"Texas", "Alabama", "Ohio"})

	snap := sel.Snapshot()
	assert.Equal(t, []string{"Alabama", "Ohio", "Texas"}, snap.Selected)
}
