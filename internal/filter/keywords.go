// Package filter drops scraped records that mention excluded keywords.
package filter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"go-cityboard-automation/internal/models"
)

// matchedFields are the record fields searched for excluded keywords.
var matchedFields = []string{"title", "company", "description", "department", "tags"}

// Normalize lowercases s and strips diacritics, so "Sénior" reads "senior".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(result)
}

// Excluder matches whole words, so "lead" excludes "Team Lead" but not "Leadership".
type Excluder struct {
	re *regexp.Regexp
}

// NewExcluder compiles the keywords into one pattern. Blank keywords are
// ignored; with none left the excluder lets everything through.
func NewExcluder(keywords []string) *Excluder {
	terms := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(Normalize(k))
		if k == "" {
			continue
		}
		terms = append(terms, regexp.QuoteMeta(k))
	}
	if len(terms) == 0 {
		return &Excluder{}
	}
	return &Excluder{re: regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(?:` + strings.Join(terms, "|") + `)(?:[^\p{L}\p{N}_]|$)`)}
}

func (e *Excluder) Excluded(r models.Record) bool {
	if e == nil || e.re == nil {
		return false
	}
	parts := make([]string, 0, len(matchedFields))
	for _, f := range matchedFields {
		if v := r.Field(f); v != "" {
			parts = append(parts, v)
		}
	}
	return e.re.MatchString(Normalize(strings.Join(parts, " ")))
}

// Apply returns the records that are not excluded, in their original order.
func (e *Excluder) Apply(records []models.Record) []models.Record {
	if e == nil || e.re == nil {
		return records
	}
	kept := make([]models.Record, 0, len(records))
	for _, r := range records {
		if !e.Excluded(r) {
			kept = append(kept, r)
		}
	}
	return kept
}
