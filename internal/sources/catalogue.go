// Package sources is the catalogue of known scrapers: where each one reads,
// how its records are keyed and how they are announced.
package sources

import (
	"log/slog"
	"slices"
	"sort"

	"go-cityboard-automation/internal/dedup"
	"go-cityboard-automation/internal/filter"
	"go-cityboard-automation/internal/models"
	"go-cityboard-automation/internal/notify"
	"go-cityboard-automation/internal/runner"
	"go-cityboard-automation/internal/scraper"
	"go-cityboard-automation/internal/scraper/dns"
	"go-cityboard-automation/internal/scraper/novascotia"
	"go-cityboard-automation/internal/scraper/techto"
)

const (
	colorHalifax = 0x0066cc
	colorToronto = 0xf7931a
	colorLegacy  = 0x00ff00
)

type Definition struct {
	Name     string
	Identity models.Identity
	URL      string
	Parse    scraper.ParseFunc
	Key      dedup.KeyFunc
	Describe func(models.Record) string
	Label    string
	Color    int
	// TestLabel and TestColor override Label and Color for the test message
	// when set.
	TestLabel  string
	TestColor  int
	ReverseNew bool
	// Sample is the record posted by send-test-notification.
	Sample models.Record
}

var catalogue = []Definition{
	{
		Name:       "halifax-dns-jobs",
		Identity:   models.Identity{City: "halifax", Source: "dns", Kind: models.KindJobs},
		URL:        dns.JobsURL,
		Parse:      dns.ParseJobs,
		Key:        dedup.CompositeKey("title", "company"),
		Describe:   dns.DescribeJob,
		Label:      "Halifax Jobs - Digital Nova Scotia",
		Color:      colorHalifax,
		ReverseNew: true,
		Sample: models.Record{
			"title":      "Test Halifax Tech Position",
			"link":       dns.JobsURL,
			"company":    "Test Company",
			"location":   "Halifax",
			"jobType":    "Full Time",
			"postedDate": "Today",
		},
	},
	{
		Name:     "halifax-dns-events",
		Identity: models.Identity{City: "halifax", Source: "dns", Kind: models.KindEvents},
		URL:      dns.EventsURL,
		Parse:    dns.ParseEvents,
		Key:      dedup.LinkKey,
		Describe: dns.DescribeEvent,
		Label:    "Halifax Events - Digital Nova Scotia",
		Color:    colorHalifax,
		Sample: models.Record{
			"title":     "Test Event",
			"link":      dns.EventsURL,
			"datetime":  "June 26 @ 10:00 am - 11:00 am ADT",
			"isVirtual": true,
			"cost":      "Free",
		},
	},
	{
		Name:       "toronto-techto-jobs",
		Identity:   models.Identity{City: "toronto", Source: "techto", Kind: models.KindJobs},
		URL:        techto.JobsURL,
		Parse:      techto.ParseJobs,
		Key:        dedup.LinkKey,
		Describe:   techto.DescribeJob,
		Label:      "Toronto Jobs - TechTO",
		TestLabel:  "Toronto TechTO Jobs",
		Color:      colorToronto,
		ReverseNew: true,
		Sample: models.Record{
			"title":      "Test Toronto Tech Position",
			"link":       techto.JobsOrigin + "/jobs/",
			"company":    "Test Company",
			"jobType":    "Full-time",
			"location":   "Toronto, ON",
			"postedDate": "2d ago",
			"tags":       "Product & Engineering",
		},
	},
	{
		Name:      "toronto-techto-events",
		Identity:  models.Identity{City: "toronto", Source: "techto", Kind: models.KindEvents},
		URL:       techto.EventsURL,
		Parse:     techto.ParseEvents,
		Key:       dedup.LinkKey,
		Describe:  techto.DescribeEvent,
		Label:     "Toronto Events - TechTO",
		TestLabel: "Toronto TechTO Events",
		Color:     colorToronto,
		Sample: models.Record{
			"title":       "Test Toronto Tech Event",
			"link":        techto.EventsOrigin + "/events/",
			"description": "Join TechTO for engaging conversations with tech leaders",
			"date":        "August 11, 2025 5:00 pm - 9:00 pm",
			"location":    "Auditorium - MaRS Centre, 101 College St, Toronto",
			"price":       "$30 Early Bird | Free for Members",
			"status":      "Up Next",
		},
	},
	{
		Name:       "dns-jobs",
		Identity:   models.Identity{Kind: models.KindJobs, File: "jobs.json"},
		URL:        dns.JobsURL,
		Parse:      dns.ParseLegacyJobs,
		Key:        dedup.LinkKey,
		Describe:   dns.DescribeLegacyJob,
		Label:      "Digital Nova Scotia Jobs",
		Color:      colorLegacy,
		ReverseNew: true,
		Sample: models.Record{
			"title":    "Test Job Posting",
			"link":     dns.JobsURL,
			"company":  "Test Company",
			"location": "Halifax",
			"jobType":  "Full Time",
		},
	},
	{
		Name:      "dns-events",
		Identity:  models.Identity{Kind: models.KindEvents, File: "events.json"},
		URL:       dns.EventsURL,
		Parse:     dns.ParseEvents,
		Key:       dedup.LinkKey,
		Describe:  dns.DescribeEvent,
		Label:     "Digital Nova Scotia Events",
		Color:     colorLegacy,
		TestColor: 0x3498db,
		Sample: models.Record{
			"title":     "Test Event",
			"link":      dns.EventsURL,
			"datetime":  "June 26 @ 10:00 am - 11:00 am ADT",
			"isVirtual": true,
			"cost":      "Free",
		},
	},
	{
		Name:       "ns-jobs",
		Identity:   models.Identity{Source: "ns", Kind: models.KindJobs, File: "NS-jobs.json"},
		URL:        novascotia.JobsURL,
		Parse:      novascotia.ParseJobs,
		Key:        dedup.LinkKey,
		Describe:   novascotia.DescribeJob,
		Label:      "Nova Scotia Government Jobs - Cyber Department",
		TestLabel:  "Nova Scotia Government Jobs",
		Color:      colorLegacy,
		ReverseNew: true,
		Sample: models.Record{
			"title":       "Test Cyber Security Position",
			"link":        "https://jobs.novascotia.ca/go/All-Opportunities/502817/",
			"department":  "Cyber Security",
			"location":    "Halifax",
			"closingDate": "December 31, 2024",
		},
	},
}

// Lookup finds a definition by source name.
func Lookup(name string) (Definition, bool) {
	i := slices.IndexFunc(catalogue, func(d Definition) bool { return d.Name == name })
	if i < 0 {
		return Definition{}, false
	}
	return catalogue[i], true
}

// Names lists every known source, sorted.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for _, d := range catalogue {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

// WebhookEnv is the variable holding this source's webhook URL.
func (d Definition) WebhookEnv() string {
	return d.Identity.WebhookEnv()
}

func (d Definition) Target(webhookURL string) notify.Target {
	return notify.Target{
		WebhookURL: webhookURL,
		WebhookEnv: d.WebhookEnv(),
		Label:      d.Label,
		Color:      d.Color,
		Describe:   d.Describe,
	}
}

// TestTarget is Target with the test message label and colour applied.
func (d Definition) TestTarget(webhookURL string) notify.Target {
	t := d.Target(webhookURL)
	if d.TestLabel != "" {
		t.Label = d.TestLabel
	}
	if d.TestColor != 0 {
		t.Color = d.TestColor
	}
	return t
}

// Settings are the per-deployment knobs layered over a definition.
type Settings struct {
	URL              string
	ExcludeKeywords  []string
	PersistUnchanged bool
	WebhookURL       string
}

// Source assembles the runnable form of d.
func (d Definition) Source(fetcher scraper.PageFetcher, s Settings, log *slog.Logger) runner.Source {
	url := d.URL
	if s.URL != "" {
		url = s.URL
	}
	ex := scraper.NewHTMLScraper(d.Name, url, fetcher, d.Parse,
		scraper.WithExcluder(filter.NewExcluder(s.ExcludeKeywords)),
		scraper.WithLogger(log),
	)
	return runner.Source{
		Name:      d.Name,
		Identity:  d.Identity,
		Extractor: ex,
		Key:       d.Key,
		Policy:    runner.Policy{ReverseNew: d.ReverseNew, PersistUnchanged: s.PersistUnchanged},
		Target:    d.Target(s.WebhookURL),
	}
}
