package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const viewsYAML = `
views:
  - name: Nazca 2023
    spec:
      plates: [Nazca]
      year: 2023
  - name: North coast
    spec:
      cities: [Arica, Iquique]
      date_range:
        start: 2023-01-01
        end: 2023-06-30
  - name: Predictions
    spec:
      prediction_flags: ["Yes"]
`

func TestImportViews(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, skipped, err := ImportViews(ctx, st, strings.NewReader(viewsYAML))
	require.NoError(t, err)
	assert.Equal(t, 3, created)
	assert.Equal(t, 0, skipped)

	views, err := st.ListViews(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)

	byName := map[string]int{}
	for i, v := range views {
		byName[v.Name] = i
	}
	north := views[byName["North coast"]]
	assert.Equal(t, []string{"Arica", "Iquique"}, north.Spec.Cities)
	require.NotNil(t, north.Spec.DateRange)
	assert.True(t, north.Spec.DateRange.End.Equal(time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)))

	// Re-import skips what exists.
	created, skipped, err = ImportViews(ctx, st, strings.NewReader(viewsYAML))
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 3, skipped)
}

func TestImportViews_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	created, skipped, err := ImportViews(context.Background(), st, strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Zero(t, skipped)
}

func TestImportViews_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"malformed", "views: [unclosed", "decode views yaml"},
		{"missing name", "views:\n  - spec: {year: 2023}\n", "view name is required"},
		{"bad month", "views:\n  - name: x\n    spec: {month: 13}\n", "month"},
		{"listed twice", "views:\n  - name: x\n  - name: x\n", "listed twice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestSQLiteStore(t)
			_, _, err := ImportViews(context.Background(), st, strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			views, err := st.ListViews(context.Background())
			require.NoError(t, err)
			assert.Empty(t, views, "nothing is written when validation fails")
		})
	}
}
