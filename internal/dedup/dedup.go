// Package dedup decides which freshly scraped records were not seen in the
// previous snapshot.
package dedup

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"go-cityboard-automation/internal/models"
)

// KeyFunc computes the identity key of a record. Two records with the same
// key denote the same real-world item.
type KeyFunc func(models.Record) string

// keySep separates composite key parts. It cannot appear in scraped text.
const keySep = "\x1f"

// LinkKey is the default identity: the record's link.
func LinkKey(r models.Record) string {
	return r.Link()
}

// CompositeKey builds a tuple key from several fields, e.g. (title, company)
// for boards whose links are unstable.
func CompositeKey(fields ...string) KeyFunc {
	return func(r models.Record) string {
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = r.Field(f)
		}
		return strings.Join(parts, keySep)
	}
}

// Diff returns the records of current whose key is absent from previous,
// in current's order. An empty previous makes every current record new.
func Diff(previous, current []models.Record, key KeyFunc) []models.Record {
	if key == nil {
		key = LinkKey
	}

	seen := mapset.NewThreadUnsafeSetWithSize[string](len(previous))
	for _, r := range previous {
		seen.Add(key(r))
	}

	fresh := make([]models.Record, 0)
	for _, r := range current {
		if !seen.Contains(key(r)) {
			fresh = append(fresh, r)
		}
	}
	return fresh
}

// Reverse returns a reversed copy of records.
func Reverse(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r
	}
	return out
}
