package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peerreviews/internal/cmd/table"
	"github.com/agentstation/peerreviews/internal/utils/ptr"
	"github.com/agentstation/peerreviews/pkg/entries"
	"github.com/agentstation/peerreviews/pkg/matcher"
	"github.com/agentstation/peerreviews/pkg/reconciler"
)

func TestStatsToTableData(t *testing.T) {
	data := table.StatsToTableData(reconciler.Stats{Matched: 2, Total: 5}, matcher.StrategyIndexed)

	assert.Equal(t, []string{"Metric", "Count"}, data.Headers)
	require.NotEmpty(t, data.Rows)
	assert.Equal(t, []string{"Strategy", "Indexed"}, data.Rows[0])
	assert.Contains(t, data.Rows, []string{"Matched", "2"})
	assert.Contains(t, data.Rows, []string{"Total", "5"})
}

func TestEntriesToTableData(t *testing.T) {
	list := []entries.Entry{{
		ID:           "nature",
		Name:         "Nature",
		Years:        []int{2024, 2023, 2022, 2021, 2020, 2019},
		LastReviewed: ptr.Int(2024),
		Source:       entries.SourceMerged,
		GroupIDs:     []string{"issn:0028-0836"},
	}}

	narrow := table.EntriesToTableData(list, false)
	require.Len(t, narrow.Rows, 1)
	assert.Equal(t, []string{"nature", "Nature", "-", "-", "2024, 2023, 2022, 2021, 2020, +1", "2024", "merged"}, narrow.Rows[0])

	wide := table.EntriesToTableData(list, true)
	assert.Len(t, wide.Headers, 11)
	assert.Equal(t, "-", wide.Rows[0][7])
	assert.Equal(t, "issn:0028-0836", wide.Rows[0][8])
}

func TestFormatYears(t *testing.T) {
	assert.Equal(t, "-", table.FormatYears(nil, 3))
	assert.Equal(t, "2021, 2020", table.FormatYears([]int{2021, 2020}, 0))
	assert.Equal(t, "2021, +1", table.FormatYears([]int{2021, 2020}, 1))
}
