package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/peerreviews/pkg/entries"
	"github.com/agentstation/peerreviews/pkg/matcher"
)

// Result is the outcome of one aggregation run.
type Result struct {
	Entries  []entries.Entry      `json:"entries"`
	Stats    Stats                `json:"stats"`
	Strategy matcher.StrategyType `json:"strategy"`
	Duration time.Duration        `json:"duration"`
}

// Stats counts what happened to the inputs.
type Stats struct {
	ManualInput   int `json:"manualInput"`   // Raw manual records received
	RemoteInput   int `json:"remoteInput"`   // Raw remote records received
	ManualSkipped int `json:"manualSkipped"` // Manual records that were not objects
	RemoteSkipped int `json:"remoteSkipped"` // Remote records that were not objects
	Matched       int `json:"matched"`       // Remote records merged with a manual record
	RemoteOnly    int `json:"remoteOnly"`    // Remote records passed through
	ManualOnly    int `json:"manualOnly"`    // Manual records never matched
	Total         int `json:"total"`         // Entries emitted
}

// String summarizes the statistics on one line.
func (s Stats) String() string {
	return fmt.Sprintf("%d entries (%d merged, %d remote only, %d manual only, %d skipped)",
		s.Total, s.Matched, s.RemoteOnly, s.ManualOnly, s.ManualSkipped+s.RemoteSkipped)
}

// IDs returns the entry ids in output order.
func (r *Result) IDs() []string {
	ids := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		ids[i] = e.ID
	}
	return ids
}
