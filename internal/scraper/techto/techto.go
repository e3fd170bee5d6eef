// Package techto parses the TechTO job board and event listing.
package techto

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-cityboard-automation/internal/models"
	"go-cityboard-automation/internal/scraper"
)

const (
	JobsOrigin   = "https://jobs.techto.org"
	EventsOrigin = "https://www.techto.org"

	JobsURL   = JobsOrigin + "/jobs?q=&category=product-engineering&job_type=&posted_at=&location=Toronto%2C+Ontario%2C+Canada&location_id=1233&search_radius=&order=relevance"
	EventsURL = EventsOrigin + "/events"
)

func ParseJobs(doc *goquery.Document) []models.Record {
	var jobs []models.Record
	doc.Find(".job-listings-item").Each(func(_ int, el *goquery.Selection) {
		var tags []string
		el.Find(".job-tag").Each(func(_ int, tag *goquery.Selection) {
			tags = append(tags, strings.TrimSpace(tag.Text()))
		})

		jobs = append(jobs, models.Record{
			"title":      scraper.Text(el, "h3"),
			"link":       scraper.Absolute(JobsOrigin, scraper.Attr(el, "a.job-details-link", "href")),
			"company":    scraper.Text(el, "a[href*='/companies/']"),
			"jobType":    scraper.Text(el, "a[href*='/jobs/full-time'], a[href*='/jobs/part-time'], a[href*='/jobs/contract']"),
			"location":   scraper.Text(el, "span:contains('Remote'), span:contains('Toronto')"),
			"postedDate": scraper.Text(el, ".job-posted-date"),
			"tags":       strings.Join(tags, ", "),
		})
	})
	return jobs
}

func ParseEvents(doc *goquery.Document) []models.Record {
	var events []models.Record
	doc.Find(".collection-item").Each(func(_ int, el *goquery.Selection) {
		var date []string
		el.Find(".detail-container .div-block-8 p").Each(func(_ int, p *goquery.Selection) {
			date = append(date, strings.TrimSpace(p.Text()))
		})

		events = append(events, models.Record{
			"title":       scraper.Text(el, "h2, h4"),
			"link":        scraper.Absolute(EventsOrigin, scraper.Attr(el, "a.button", "href")),
			"description": scraper.Text(el, ".max-width-xsmall p"),
			"date":        strings.Join(date, " "),
			"location":    scraper.Text(el, ".detail-container img[alt='Location marker'] + .div-block-9 p"),
			"price":       scraper.Text(el, ".detail-container img[alt='Bookmark'] + .div-block-9 p"),
			"status":      scraper.Text(el, ".text-style-tagline"),
		})
	})
	return events
}

func DescribeJob(r models.Record) string {
	desc := fmt.Sprintf("**Company:** %s\n**Type:** %s\n**Location:** %s\n**Posted:** %s",
		r.Field("company"), r.Field("jobType"), r.Field("location"), r.Field("postedDate"))
	if tags := r.Field("tags"); tags != "" {
		desc += "\n**Tags:** " + tags
	}
	return desc
}

func DescribeEvent(r models.Record) string {
	return fmt.Sprintf("**Date:** %s\n**Location:** %s\n**Price:** %s\n**Status:** %s\n\n%s",
		r.Field("date"), r.Field("location"), r.Field("price"), r.Field("status"), r.Field("description"))
}
