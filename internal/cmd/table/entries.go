// Package table converts peer-review data into rows for table output.
package table

import (
	"strconv"
	"strings"

	"github.com/agentstation/peerreviews/pkg/entries"
	"github.com/agentstation/peerreviews/pkg/matcher"
	"github.com/agentstation/peerreviews/pkg/reconciler"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// maxYears is how many years the narrow table lists before eliding.
const maxYears = 5

// EntriesToTableData converts entries to table format. Wide adds the
// identifier columns used for matching.
func EntriesToTableData(list []entries.Entry, wide bool) Data {
	headers := []string{"ID", "Name", "Organization", "Role", "Years", "Last", "Source"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignCenter}
	if wide {
		headers = append(headers, "URL", "Group IDs", "Aliases", "Put Codes")
		align = append(align, AlignLeft, AlignLeft, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(list))
	for _, e := range list {
		years := FormatYears(e.Years, maxYears)
		if wide {
			years = FormatYears(e.Years, 0)
		}
		row := []string{
			e.ID,
			e.Name,
			orDash(e.Organization),
			orDash(e.Role),
			years,
			formatLast(e.LastReviewed),
			string(e.Source),
		}
		if wide {
			url := ""
			if e.URL != nil {
				url = *e.URL
			}
			row = append(row,
				orDash(url),
				orDash(strings.Join(e.GroupIDs, ", ")),
				orDash(strings.Join(e.Aliases, ", ")),
				orDash(strings.Join(e.PutCodes, ", ")),
			)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// StatsToTableData renders aggregation counters as a two-column table,
// headed by the matching strategy that produced them.
func StatsToTableData(s reconciler.Stats, strategy matcher.StrategyType) Data {
	return Data{
		Headers: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Strategy", strategy.Name()},
			{"Manual records", strconv.Itoa(s.ManualInput)},
			{"Remote records", strconv.Itoa(s.RemoteInput)},
			{"Manual skipped", strconv.Itoa(s.ManualSkipped)},
			{"Remote skipped", strconv.Itoa(s.RemoteSkipped)},
			{"Matched", strconv.Itoa(s.Matched)},
			{"Remote only", strconv.Itoa(s.RemoteOnly)},
			{"Manual only", strconv.Itoa(s.ManualOnly)},
			{"Total", strconv.Itoa(s.Total)},
		},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// FormatYears joins years, eliding after limit entries (0 means no limit).
func FormatYears(years []int, limit int) string {
	if len(years) == 0 {
		return "-"
	}
	shown := years
	if limit > 0 && len(years) > limit {
		shown = years[:limit]
	}
	parts := make([]string, len(shown))
	for i, y := range shown {
		parts[i] = strconv.Itoa(y)
	}
	out := strings.Join(parts, ", ")
	if len(shown) < len(years) {
		out += ", +" + strconv.Itoa(len(years)-len(shown))
	}
	return out
}

func formatLast(year *int) string {
	if year == nil {
		return "-"
	}
	return strconv.Itoa(*year)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
