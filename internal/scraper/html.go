package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text returns the trimmed, concatenated text of every element matched by
// selector under sel.
func Text(sel *goquery.Selection, selector string) string {
	return strings.TrimSpace(sel.Find(selector).Text())
}

// Attr returns the trimmed attribute of the first element matched by selector.
func Attr(sel *goquery.Selection, selector, attr string) string {
	v, _ := sel.Find(selector).First().Attr(attr)
	return strings.TrimSpace(v)
}

// Absolute prefixes root-relative links with origin. Absolute and empty
// links are returned unchanged.
func Absolute(origin, href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return strings.TrimRight(origin, "/") + href
}
