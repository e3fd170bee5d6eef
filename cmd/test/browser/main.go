package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"go-cityboard-automation/internal/browser"
	"go-cityboard-automation/internal/logger"
	"go-cityboard-automation/internal/scraper"
	"go-cityboard-automation/internal/sources"
)

func main() {
	name := flag.String("source", "toronto-techto-events", "catalogue source to render")
	flag.Parse()

	def, ok := sources.Lookup(*name)
	if !ok {
		log.Fatalf("unknown source %q, known: %v", *name, sources.Names())
	}

	fmt.Println("🌐 Testing Browser Manager...")
	pm, err := browser.NewPlaywright(browser.Options{
		Timeout:       30 * time.Second,
		ScreenshotDir: "logs/screenshots",
		Log:           logger.New("debug"),
	})
	if err != nil {
		log.Fatalf("Failed to create Playwright: %v", err)
	}
	defer pm.Close()
	fmt.Println("✅ Playwright started")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fmt.Printf("🔍 Navigating to %s...\n", def.URL)
	html, err := pm.Fetch(ctx, def.URL)
	if err != nil {
		log.Fatalf("Failed to fetch: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Fatalf("Failed to parse: %v", err)
	}
	records := scraper.Complete(def.Parse(doc))
	fmt.Printf("✅ Rendered %d bytes, extracted %d records\n", len(html), len(records))
	for i, r := range records {
		if i == 5 {
			break
		}
		fmt.Printf("   - %s (%s)\n", r.Title(), r.Link())
	}
}
