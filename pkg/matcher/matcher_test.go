package matcher_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/agentstation/peerreviews/pkg/entries"
	"github.com/agentstation/peerreviews/pkg/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manualFixture() *matcher.Index {
	return matcher.NewIndex(
		entries.Entry{ID: "x", Name: "Journal X"},
		entries.Entry{ID: "nature", Name: "Nature", Aliases: []string{"nat"}},
		entries.Entry{ID: "science", Name: "Science", GroupIDs: []string{"issn:0036-8075"}},
		entries.Entry{ID: "cell", Name: "Cell", Aliases: []string{"cell-press"}},
		entries.Entry{ID: "nature-dup", Name: "NATURE"},
	)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		remote entries.Entry
		wantID string
	}{
		{"id beats different name", entries.Entry{ID: "x", Name: "Completely Different"}, "x"},
		{"id beats earlier name match", entries.Entry{ID: "cell", Name: "Nature"}, "cell"},
		{"case-insensitive name", entries.Entry{ID: "r1", Name: "nAtUrE"}, "nature"},
		{"group id", entries.Entry{ID: "r2", GroupIDs: []string{"other", "issn:0036-8075"}}, "science"},
		{"alias", entries.Entry{ID: "r3", Aliases: []string{"cell-press"}}, "cell"},
		{"first candidate in order wins", entries.Entry{ID: "r4", Name: "Cell", Aliases: []string{"nat"}}, "nature"},
		{"empty names never match", entries.Entry{ID: "r5", Name: ""}, ""},
		{"no match", entries.Entry{ID: "r6", Name: "Lancet", GroupIDs: []string{"g"}, Aliases: []string{"l"}}, ""},
	}

	for _, strategy := range matcher.Strategies() {
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%s/%s", strategy, tt.name), func(t *testing.T) {
				m := matcher.New(strategy, manualFixture())
				assert.Equal(t, strategy, m.Strategy())

				got, ok := m.Match(tt.remote)
				if tt.wantID == "" {
					assert.False(t, ok)
					return
				}
				require.True(t, ok)
				assert.Equal(t, tt.wantID, got.ID)
			})
		}
	}
}

func TestMatchEmptyIndex(t *testing.T) {
	for _, m := range []matcher.Matcher{matcher.NewLinear(nil), matcher.NewIndexed(nil)} {
		_, ok := m.Match(entries.Entry{ID: "a", Name: "A"})
		assert.False(t, ok)
	}
}

// TestStrategiesAgree checks that the indexed lookups reproduce the linear
// scan on randomized inputs with heavy key overlap.
func TestStrategiesAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	pick := func(prefix string, n int) []string {
		out := []string{}
		for range rng.IntN(n) {
			out = append(out, fmt.Sprintf("%s%d", prefix, rng.IntN(6)))
		}
		return out
	}
	names := []string{"", "Nature", "nature", "Science", "SCIENCE", "Cell", "Lancet"}

	for round := range 200 {
		manual := make([]entries.Entry, 0, 8)
		for i := range rng.IntN(8) {
			manual = append(manual, entries.Entry{
				ID:       fmt.Sprintf("m%d", i),
				Name:     names[rng.IntN(len(names))],
				GroupIDs: pick("g", 3),
				Aliases:  pick("a", 3),
			})
		}
		idx := matcher.NewIndex(manual...)
		lin, ixd := matcher.NewLinear(idx), matcher.NewIndexed(idx)

		for i := range 10 {
			remote := entries.Entry{
				ID:       fmt.Sprintf("r%d", i),
				Name:     names[rng.IntN(len(names))],
				GroupIDs: pick("g", 3),
				Aliases:  pick("a", 3),
			}
			if rng.IntN(4) == 0 {
				remote.ID = fmt.Sprintf("m%d", rng.IntN(8))
			}
			a, aok := lin.Match(remote)
			b, bok := ixd.Match(remote)
			require.Equal(t, aok, bok, "round %d remote %+v", round, remote)
			assert.Equal(t, a.ID, b.ID, "round %d remote %+v", round, remote)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    matcher.StrategyType
		wantErr bool
	}{
		{"", matcher.StrategyLinearScan, false},
		{"linear-scan", matcher.StrategyLinearScan, false},
		{" Indexed ", matcher.StrategyIndexed, false},
		{"fuzzy", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := matcher.ParseStrategy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "Linear Scan", matcher.StrategyLinearScan.Name())
}
