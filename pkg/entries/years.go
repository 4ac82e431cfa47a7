package entries

import (
	"cmp"
	"slices"
)

// UniqueSortedYears returns the distinct positive years, latest first.
func UniqueSortedYears(years ...int) []int {
	out := make([]int, 0, len(years))
	for _, y := range years {
		if y > 0 {
			out = append(out, y)
		}
	}
	slices.SortFunc(out, func(a, b int) int { return cmp.Compare(b, a) })
	return slices.Compact(out)
}
