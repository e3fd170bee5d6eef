package models

import "fmt"

// Record is one scraped item (a job posting or an event). Values are strings
// or booleans when produced by an extractor; records decoded from a stored
// snapshot may carry other JSON types.
type Record map[string]any

// Field returns the field as a string, or "" when it is missing.
func (r Record) Field(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Bool returns the field as a bool. Missing or non-boolean values are false.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

func (r Record) Title() string { return r.Field("title") }

func (r Record) Link() string { return r.Field("link") }
