// Package dns parses the Digital Nova Scotia job board and event calendar.
package dns

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-cityboard-automation/internal/models"
	"go-cityboard-automation/internal/scraper"
)

const (
	Origin    = "https://digitalnovascotia.com"
	JobsURL   = Origin + "/job-posts/"
	EventsURL = Origin + "/events/"
)

// ParseJobs reads the current job board markup.
func ParseJobs(doc *goquery.Document) []models.Record {
	var jobs []models.Record
	doc.Find("a.job-listing").Each(func(_ int, el *goquery.Selection) {
		href, _ := el.Attr("href")
		jobs = append(jobs, models.Record{
			"title":      scraper.Text(el, ".business-info h3"),
			"link":       scraper.Absolute(Origin, strings.TrimSpace(href)),
			"company":    scraper.Text(el, ".business-info h4"),
			"location":   scraper.Text(el, ".job-region h4"),
			"jobType":    scraper.Text(el, ".job-info .job-type"),
			"postedDate": scraper.Text(el, ".job-info .date"),
		})
	})
	return jobs
}

// ParseLegacyJobs reads the older board layout, which keeps hrefs as-is and
// has no posted date.
func ParseLegacyJobs(doc *goquery.Document) []models.Record {
	var jobs []models.Record
	doc.Find(".job-listing").Each(func(_ int, el *goquery.Selection) {
		href, _ := el.Attr("href")
		jobs = append(jobs, models.Record{
			"title":    scraper.Text(el, "h3"),
			"link":     strings.TrimSpace(href),
			"company":  scraper.Text(el, ".business-info h4"),
			"location": scraper.Text(el, ".job-region h4"),
			"jobType":  scraper.Text(el, ".job-type"),
		})
	})
	return jobs
}

const eventPrefix = ".tribe-events-calendar-month-mobile-events__mobile-event"

func ParseEvents(doc *goquery.Document) []models.Record {
	var events []models.Record
	doc.Find(eventPrefix).Each(func(_ int, el *goquery.Selection) {
		events = append(events, models.Record{
			"title":     scraper.Text(el, eventPrefix+"-title"),
			"link":      scraper.Attr(el, eventPrefix+"-title-link", "href"),
			"datetime":  scraper.Text(el, eventPrefix+"-datetime"),
			"isVirtual": el.Find(".tribe-events-virtual-virtual-event").Length() > 0,
			"cost":      scraper.Text(el, ".tribe-events-c-small-cta__price"),
		})
	})
	return events
}

func DescribeJob(r models.Record) string {
	return fmt.Sprintf("**Company:** %s\n**Location:** %s\n**Type:** %s\n**Posted:** %s",
		r.Field("company"), r.Field("location"), r.Field("jobType"), r.Field("postedDate"))
}

func DescribeLegacyJob(r models.Record) string {
	return fmt.Sprintf("**Company:** %s\n**Location:** %s\n**Type:** %s",
		r.Field("company"), r.Field("location"), r.Field("jobType"))
}

func DescribeEvent(r models.Record) string {
	kind := "In Person"
	if r.Bool("isVirtual") {
		kind = "Virtual"
	}
	desc := fmt.Sprintf("**Date & Time:** %s\n**Event Type:** %s", r.Field("datetime"), kind)
	if cost := r.Field("cost"); cost != "" {
		desc += "\n**Cost:** " + cost
	}
	return desc
}
