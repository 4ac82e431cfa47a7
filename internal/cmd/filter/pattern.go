package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// PatternType selects how a pattern is interpreted.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto detects the pattern type from its metacharacters.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Pattern is a compiled, case-insensitive glob or regex. Globs are anchored
// to the whole input; regexes match anywhere unless anchored themselves.
type Pattern struct {
	source   string
	kind     PatternType
	compiled *regexp.Regexp
}

// Compile compiles pattern as the given type.
func Compile(kind PatternType, pattern string) (*Pattern, error) {
	if kind == Auto {
		kind = DetectPatternType(pattern)
	}

	expr := pattern
	switch kind {
	case Glob:
		expr = GlobToRegex(pattern)
	case Regex:
	default:
		return nil, fmt.Errorf("unsupported pattern type: %v", kind)
	}

	compiled, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, fmt.Errorf("invalid %s pattern %q: %w", kind, pattern, err)
	}
	return &Pattern{source: pattern, kind: kind, compiled: compiled}, nil
}

// Match reports whether input matches.
func (p *Pattern) Match(input string) bool {
	return p.compiled.MatchString(input)
}

// MatchAny reports whether any input matches.
func (p *Pattern) MatchAny(inputs ...string) bool {
	for _, input := range inputs {
		if p.Match(input) {
			return true
		}
	}
	return false
}

// String returns the pattern as written.
func (p *Pattern) String() string {
	return p.source
}

// Type returns the resolved pattern type.
func (p *Pattern) Type() PatternType {
	return p.kind
}

// DetectPatternType treats patterns with regex-only syntax as regexes and
// everything else as globs.
func DetectPatternType(pattern string) PatternType {
	regexIndicators := []string{
		"^", "$", `\d`, `\w`, `\s`, `\D`, `\W`, `\S`,
		"(?", "{", "}", "+", "|", "(", ")", ".*",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// GlobToRegex converts a glob pattern to an anchored regex.
func GlobToRegex(glob string) string {
	var regex strings.Builder
	regex.WriteString("^")

	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			regex.WriteString(".*")
		case '?':
			regex.WriteString(".")
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				regex.WriteString(`\[`)
				continue
			}
			class := glob[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			regex.WriteString("[" + strings.ReplaceAll(class, `\`, `\\`) + "]")
			i += end + 1
		case '\\':
			if i+1 < len(glob) {
				i++
				regex.WriteString(regexp.QuoteMeta(string(glob[i])))
			}
		default:
			regex.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	regex.WriteString("$")
	return regex.String()
}
