package entries

import (
	"strings"
	"unicode"

	"github.com/agentstation/peerreviews/pkg/constants"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify derives a lower-case, URL-safe identifier from free text.
// Accents are folded ("Résumé" becomes "resume"), every run of characters
// outside [a-z0-9] becomes a single hyphen, leading and trailing hyphens are
// trimmed and the result is cut to 120 characters.
func Slugify(text string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range folded {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := b.String()
	if len(slug) > constants.MaxSlugLength {
		slug = slug[:constants.MaxSlugLength]
	}
	return slug
}
