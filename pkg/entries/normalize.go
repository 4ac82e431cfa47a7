package entries

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Normalize converts one raw record into a canonical Entry. The record may be
// a decoded JSON or YAML object, an Entry or a *Entry. It reports false when
// raw is not an object; every other shape problem degrades to a default.
//
// defaultSource is used when the record carries no source tag of its own.
func Normalize(raw any, defaultSource Source) (Entry, bool) {
	fields, ok := asObject(raw)
	if !ok {
		return Entry{}, false
	}

	years := parseYears(fields["years"])
	e := Entry{
		Name:         text(fields["name"]),
		Organization: text(fields["organization"]),
		Role:         firstNonEmpty(text(fields["role"]), text(fields["reviewRole"])),
		Years:        years,
		Source:       defaultSource,
		GroupIDs:     parseSet(fields["groupIds"]),
		Aliases:      parseSet(fields["aliases"]),
		PutCodes:     parseSet(fields["putCodes"]),
	}

	if tag := text(fields["source"]); tag != "" {
		e.Source = Source(tag)
	}
	if url := text(fields["url"]); url != "" {
		e.URL = &url
	}

	switch {
	case len(years) > 0:
		latest := years[0]
		e.LastReviewed = &latest
	default:
		if y, ok := toYear(fields["lastReviewed"]); ok {
			e.LastReviewed = &y
		}
	}

	e.ID = deriveID(fields["id"], e)
	return e, true
}

// deriveID prefers an explicit id, then the first usable slug of name,
// organization and first group id, then a slug of name and organization.
func deriveID(rawID any, e Entry) string {
	if id := identifier(rawID); id != "" {
		return id
	}
	candidates := []string{e.Name, e.Organization}
	if len(e.GroupIDs) > 0 {
		candidates = append(candidates, e.GroupIDs[0])
	}
	for _, c := range candidates {
		if slug := Slugify(c); slug != "" {
			return slug
		}
	}
	return Slugify(e.Name + "-" + e.Organization)
}

func asObject(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, v != nil
	case Entry:
		return v.Raw(), true
	case *Entry:
		if v == nil {
			return nil, false
		}
		return v.Raw(), true
	}

	// YAML decoders may produce maps with other key types.
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.IsNil() {
		return nil, false
	}
	fields := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		fields[text(iter.Key().Interface())] = iter.Value().Interface()
	}
	return fields, true
}

// identifier accepts a non-empty string, kept verbatim, or a non-zero
// integral number. Zero counts as absent.
func identifier(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if n, ok := toInt(v); ok && n != 0 {
		return strconv.Itoa(n)
	}
	return ""
}

// text renders strings and scalars; anything else is empty.
func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return ""
	case json.Number:
		return s.String()
	}
	if n, ok := toInt(v); ok {
		if n == 0 {
			return ""
		}
		return strconv.Itoa(n)
	}
	if f, ok := toFloat(v); ok && f != 0 && !math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseYears keeps integral positive years; non-list input yields none.
func parseYears(v any) []int {
	items := list(v)
	years := make([]int, 0, len(items))
	for _, item := range items {
		if y, ok := toYear(item); ok {
			years = append(years, y)
		}
	}
	return UniqueSortedYears(years...)
}

func toYear(v any) (int, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || f <= 0 || f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 {
			return 0, false
		}
		return int(f), true
	}
	n, ok := toInt(v)
	if !ok || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseSet deduplicates in first-seen order and drops falsy values.
func parseSet(v any) []string {
	items := list(v)
	set := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s := text(item)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		set = append(set, s)
	}
	return set
}

func list(v any) []any {
	switch items := v.(type) {
	case nil:
		return nil
	case []any:
		return items
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}

// toInt converts integral numbers of any Go numeric type.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	f, ok := toFloat(v)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func toFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	return 0, false
}
