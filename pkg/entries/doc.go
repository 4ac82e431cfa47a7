// Package entries defines the canonical peer-review Entry and the Normalizer
// that turns loosely-typed raw records into entries.
//
// Raw records come from two dialects: the hand-maintained manual dataset and
// the remote feed built from ORCID. Both are decoded JSON (or YAML) objects
// where every field is optional and any field may be malformed. Normalize is
// the only place where those shapes are validated; everything downstream works
// with Entry values and never re-checks them.
//
// Example:
//
//	raw := map[string]any{"name": "Nature", "years": []any{2020, "2022", 2020}}
//	e, ok := entries.Normalize(raw, entries.SourceManual)
//	// e.ID == "nature", e.Years == []int{2022, 2020}, *e.LastReviewed == 2022
package entries
