package orcid

import (
	"slices"
	"strconv"
	"strings"

	"github.com/agentstation/peerreviews/internal/utils/ptr"
	"github.com/agentstation/peerreviews/pkg/entries"
	"github.com/agentstation/peerreviews/pkg/reconciler"
)

// defaultName labels a summary with no usable title.
const defaultName = "Peer review"

// Aggregate flattens every group's summaries into entries and folds the
// records that share a key (first group id, else id) together. The result
// is sorted newest first, then by name.
func Aggregate(reviews *PeerReviews) []entries.Entry {
	if reviews == nil {
		return []entries.Entry{}
	}

	var order []string
	byKey := make(map[string]*entries.Entry)

	for _, group := range reviews.Groups {
		for _, summary := range group.Summaries {
			entry := normalizeSummary(summary, group)
			key := entry.ID
			if len(entry.GroupIDs) > 0 {
				key = entry.GroupIDs[0]
			}

			existing, ok := byKey[key]
			if !ok {
				byKey[key] = &entry
				order = append(order, key)
				continue
			}
			fold(existing, entry)
		}
	}

	result := make([]entries.Entry, 0, len(order))
	for _, key := range order {
		e := *byKey[key]
		e.Years = entries.UniqueSortedYears(e.Years...)
		if len(e.Years) > 0 {
			e.LastReviewed = ptr.Int(e.Years[0])
		}
		result = append(result, e)
	}
	reconciler.Sort(result)
	return result
}

func normalizeSummary(summary Summary, group Group) entries.Entry {
	year := completionYear(summary.CompletionDate)

	container := summary.SubjectContainerName.String()
	subject := summary.SubjectName.String()
	groupType := summary.ReviewGroupType.String()
	name := firstNonEmpty(container, subject, groupType, defaultName)

	putCode := summary.PutCode.String()
	id := entries.Slugify(name)
	if id == "" && putCode != "" {
		id = "put-" + putCode
	}
	if id == "" {
		id = firstNonEmpty(entries.Slugify(groupType), entries.Slugify(subject), entries.Slugify(container), "peer-review")
	}

	e := entries.Entry{
		ID:   id,
		Name: name,
		Organization: firstNonEmpty(
			nameOf(summary.ReviewerOrg),
			nameOf(group.ReviewerOrg),
			nameOf(group.Organization),
			nameOf(summary.Organization),
		),
		Role:     firstNonEmpty(summary.ReviewerRole.String(), summary.ReviewType.String()),
		Source:   entries.SourceORCID,
		Years:    []int{},
		GroupIDs: []string{},
		Aliases:  []string{},
		PutCodes: []string{},
	}
	if year > 0 {
		e.Years = []int{year}
		e.LastReviewed = ptr.Int(year)
	}
	if url := firstNonEmpty(summary.URL.String(), summary.SubjectURL.String()); url != "" {
		e.URL = ptr.String(url)
	}
	if groupID := firstNonEmpty(group.GroupID.String(), summary.GroupID.String()); groupID != "" {
		e.GroupIDs = []string{groupID}
	}
	if summary.ExternalIdentifiers != nil {
		for _, ident := range summary.ExternalIdentifiers.Identifiers {
			if v := ident.Value.String(); v != "" {
				e.Aliases = append(e.Aliases, v)
			}
		}
	}
	if putCode != "" {
		e.PutCodes = []string{putCode}
	}
	return e
}

// fold merges next into existing: years union, the longer name and
// organization, the first role and url, unions of the identifier sets.
func fold(existing *entries.Entry, next entries.Entry) {
	existing.Years = entries.UniqueSortedYears(append(existing.Years, next.Years...)...)
	if len(existing.Years) > 0 {
		existing.LastReviewed = ptr.Int(existing.Years[0])
	} else if existing.LastReviewed == nil {
		existing.LastReviewed = ptr.Clone(next.LastReviewed)
	}

	if len(next.Name) > len(existing.Name) {
		existing.Name = next.Name
	}
	if next.Organization != "" && len(next.Organization) > len(existing.Organization) {
		existing.Organization = next.Organization
	}
	if existing.Role == "" {
		existing.Role = next.Role
	}
	if existing.URL == nil && next.URL != nil {
		existing.URL = ptr.Clone(next.URL)
	}

	existing.Aliases = union(existing.Aliases, next.Aliases)
	existing.GroupIDs = union(existing.GroupIDs, next.GroupIDs)
	existing.PutCodes = union(existing.PutCodes, next.PutCodes)
}

// completionYear accepts exactly four digits.
func completionYear(date *completionDate) int {
	if date == nil {
		return 0
	}
	raw := strings.TrimSpace(firstNonEmpty(date.Year.String(), date.Value.String()))
	if len(raw) != 4 {
		return 0
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0
		}
	}
	year, _ := strconv.Atoi(raw)
	return year
}

func union(a, b []string) []string {
	out := slices.Clone(a)
	for _, v := range b {
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
