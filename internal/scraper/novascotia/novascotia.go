// Package novascotia parses the Government of Nova Scotia careers listing,
// filtered to the cyber security department.
package novascotia

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"go-cityboard-automation/internal/models"
	"go-cityboard-automation/internal/scraper"
)

const (
	Origin  = "https://jobs.novascotia.ca"
	JobsURL = Origin + "/go/All-Opportunities/502817/?q=&q2=&alertId=&locationsearch=&title=&facility=cyber&location=&shifttype="

	// Department is fixed because the listing URL already filters on it.
	Department = "Cyber Security & Digital Solutions"
)

func ParseJobs(doc *goquery.Document) []models.Record {
	var jobs []models.Record
	doc.Find("tr.data-row").Each(func(_ int, row *goquery.Selection) {
		jobs = append(jobs, models.Record{
			"title":       scraper.Text(row, "a.jobTitle-link"),
			"link":        scraper.Absolute(Origin, scraper.Attr(row, "a.jobTitle-link", "href")),
			"department":  Department,
			"location":    scraper.Text(row, "span.jobLocation.visible-phone"),
			"closingDate": scraper.Text(row, "span.jobDate.visible-phone"),
		})
	})
	return jobs
}

func DescribeJob(r models.Record) string {
	return fmt.Sprintf("**Department:** %s\n**Location:** %s\n**Closing Date:** %s",
		r.Field("department"), r.Field("location"), r.Field("closingDate"))
}
