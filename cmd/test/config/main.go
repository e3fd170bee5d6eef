package main

import (
	"flag"
	"fmt"
	"log"

	"go-cityboard-automation/internal/config"
	"go-cityboard-automation/internal/sources"
)

func main() {
	path := flag.String("config", config.DefaultPath, "path to config.yaml")
	flag.Parse()

	fmt.Println("🔧 Testing config loading...")
	cfg, err := config.Load(*path)
	if err != nil {
		log.Fatalf("❌ Config invalid: %v", err)
	}
	fmt.Printf("✅ Config loaded successfully!\n")
	fmt.Printf("   Log level: %s\n", cfg.LogLevel)
	fmt.Printf("   Snapshots: %s (root %s, data %s)\n", cfg.Snapshot.Backend, cfg.RootDir, cfg.DataDir)
	fmt.Printf("   Fetch timeout: %s, batch pause: %s\n", cfg.FetchTimeout(), cfg.BatchPause())
	fmt.Printf("   Telegram reporter: %v\n", cfg.TelegramEnabled())
	if cfg.UsesBrowser() {
		fmt.Printf("   Browser fetch: enabled, screenshots in %s\n", cfg.Fetch.ScreenshotDir)
	}

	for _, city := range cfg.CityNames() {
		fmt.Printf("🏙️ %s\n", city)
		for _, sc := range cfg.Cities[city].Sources {
			def, ok := sources.Lookup(sc.Name)
			if !ok {
				fmt.Printf("   ❌ %s: scraper not found\n", sc.Name)
				continue
			}
			webhook := "missing"
			if cfg.Webhook(def.WebhookEnv()) != "" {
				webhook = "set"
			}
			fmt.Printf("   ✅ %s (%s, %s=%s)\n", sc.Name, sc.Fetch, def.WebhookEnv(), webhook)
		}
	}
}
