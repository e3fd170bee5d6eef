package models

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindJobs   Kind = "jobs"
	KindEvents Kind = "events"
)

func (k Kind) Valid() bool {
	return k == KindJobs || k == KindEvents
}

// Identity names one scraper's snapshot and webhook target.
// Legacy scrapers have no city and may pin a flat snapshot filename in File.
type Identity struct {
	City   string
	Source string
	Kind   Kind
	File   string
}

func (id Identity) Legacy() bool {
	return id.City == ""
}

// Key is the identity rendered for keyed backends (Redis, Postgres).
func (id Identity) Key() string {
	if id.Legacy() {
		if id.File != "" {
			return "legacy:" + id.File
		}
		return fmt.Sprintf("legacy:%s:%s", id.Source, id.Kind)
	}
	return fmt.Sprintf("%s:%s:%s", id.City, id.Source, id.Kind)
}

// WebhookEnv is the environment variable holding the identity's webhook URL,
// e.g. TORONTO_JOBS_WEBHOOK_URL.
func (id Identity) WebhookEnv() string {
	if id.Legacy() {
		if id.Source == "" {
			return fmt.Sprintf("%s_WEBHOOK_URL", strings.ToUpper(string(id.Kind)))
		}
		return fmt.Sprintf("%s_%s_WEBHOOK_URL", strings.ToUpper(id.Source), strings.ToUpper(string(id.Kind)))
	}
	return fmt.Sprintf("%s_%s_WEBHOOK_URL", strings.ToUpper(id.City), strings.ToUpper(string(id.Kind)))
}

func (id Identity) String() string {
	return id.Key()
}
