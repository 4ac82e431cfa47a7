package entries

// Source tags where an entry came from.
type Source string

// String returns the string representation of a Source.
func (s Source) String() string {
	return string(s)
}

// Well-known source tags. Any other non-empty tag from a raw record is kept
// as-is, so a remote record already flagged upstream keeps its own label.
const (
	SourceManual Source = "manual" // Hand-maintained dataset
	SourceRemote Source = "remote" // Remote feed
	SourceMerged Source = "merged" // Manual and remote records reconciled into one
	SourceORCID  Source = "orcid"  // Built directly from the ORCID registry
)
