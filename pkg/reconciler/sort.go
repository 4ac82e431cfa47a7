package reconciler

import (
	"cmp"
	"slices"
	"strings"

	"github.com/agentstation/peerreviews/pkg/entries"
)

// Sort orders entries in place: latest lastReviewed first, entries without a
// year last, then by name in byte order. Equal keys keep their input order.
func Sort(es []entries.Entry) {
	slices.SortStableFunc(es, compareEntries)
}

func compareEntries(a, b entries.Entry) int {
	if c := cmp.Compare(b.Year(), a.Year()); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}
