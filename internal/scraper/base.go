// Package scraper fetches listing pages and turns them into records.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-cityboard-automation/internal/filter"
	"go-cityboard-automation/internal/logger"
	"go-cityboard-automation/internal/models"
)

// Extractor is implemented by every site scraper.
type Extractor interface {
	// Scrape returns the records currently listed on the site. An error means
	// the page could not be fetched or parsed; an empty result is not an error.
	Scrape(ctx context.Context) ([]models.Record, error)

	// Name is the source name (halifax-dns-jobs, toronto-techto-events, ...)
	Name() string
}

// PageFetcher returns the HTML of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ParseFunc extracts records from a parsed listing page.
type ParseFunc func(doc *goquery.Document) []models.Record

// HTMLScraper is an Extractor made of a fetcher and a site parser.
type HTMLScraper struct {
	name    string
	url     string
	fetcher PageFetcher
	parse   ParseFunc
	exclude *filter.Excluder
	log     *slog.Logger
}

type Option func(*HTMLScraper)

func WithExcluder(ex *filter.Excluder) Option {
	return func(s *HTMLScraper) { s.exclude = ex }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *HTMLScraper) { s.log = log }
}

func NewHTMLScraper(name, url string, fetcher PageFetcher, parse ParseFunc, opts ...Option) *HTMLScraper {
	s := &HTMLScraper{
		name:    name,
		url:     url,
		fetcher: fetcher,
		parse:   parse,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("scraper", name)
	return s
}

func (s *HTMLScraper) Name() string {
	return s.name
}

func (s *HTMLScraper) Scrape(ctx context.Context) ([]models.Record, error) {
	s.log.Info("🔄 fetching listings", "url", s.url)

	html, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.name, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.name, err)
	}

	records := Complete(s.parse(doc))
	kept := s.exclude.Apply(records)
	if dropped := len(records) - len(kept); dropped > 0 {
		s.log.Info("🚫 excluded by keyword", "count", dropped)
	}

	s.log.Info("📦 found listings", "count", len(kept))
	return kept, nil
}

// Complete drops records that lack a title or a link.
func Complete(records []models.Record) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if r.Title() == "" || r.Link() == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
