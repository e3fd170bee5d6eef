package main

import (
	"context"
	"fmt"
	"log/slog"

	"go-cityboard-automation/internal/browser"
	"go-cityboard-automation/internal/config"
	"go-cityboard-automation/internal/database"
	"go-cityboard-automation/internal/notify"
	"go-cityboard-automation/internal/reporter"
	"go-cityboard-automation/internal/runner"
	"go-cityboard-automation/internal/scraper"
	"go-cityboard-automation/internal/snapshot"
	"go-cityboard-automation/internal/sources"
)

type app struct {
	cfg        *config.Config
	log        *slog.Logger
	store      snapshot.Store
	dispatcher *notify.Dispatcher
	runner     *runner.Runner
	reporter   reporter.Reporter
	http       scraper.PageFetcher
	browser    *lazyBrowser
	closers    []func()
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{
		cfg:        cfg,
		log:        log,
		dispatcher: notify.NewDispatcher(notify.WithPause(cfg.BatchPause()), notify.WithLogger(log)),
		reporter:   newReporter(cfg, log),
		http:       scraper.NewHTTPFetcher(cfg.FetchTimeout(), cfg.Fetch.UserAgent),
		browser: &lazyBrowser{opts: browser.Options{
			UserAgent:     cfg.Fetch.UserAgent,
			Timeout:       cfg.FetchTimeout(),
			ScreenshotDir: cfg.Fetch.ScreenshotDir,
			Log:           log,
		}},
	}
	a.closers = append(a.closers, a.browser.Close)

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store
	a.runner = runner.New(store, a.dispatcher, log)
	return a, nil
}

func (a *app) openStore(ctx context.Context) (snapshot.Store, error) {
	switch a.cfg.Snapshot.Backend {
	case config.BackendRedis:
		client, err := snapshot.NewRedisClient(ctx, a.cfg.Snapshot.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.log.Info("🗄️ using redis snapshots")
		return snapshot.NewRedisStore(client, a.log), nil
	case config.BackendPostgres:
		repo, err := database.ConnectDB(ctx, a.cfg.Snapshot.DatabaseURL, a.log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		a.log.Info("🗄️ using postgres snapshots")
		return repo, nil
	default:
		return snapshot.NewFileStore(a.cfg.RootDir, a.cfg.DataDir, a.log), nil
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) reportFault(err error) {
	if rerr := a.reporter.SendError(err); rerr != nil {
		a.log.Warn("⚠️ failed to report fault to telegram", "error", rerr)
	}
}

func (a *app) fetcher(mode string) scraper.PageFetcher {
	if mode == config.FetchBrowser {
		return a.browser
	}
	return a.http
}

func (a *app) runCommand(ctx context.Context, city, source string) error {
	if source != "" {
		return a.runSingle(ctx, city, source)
	}
	cities, err := a.resolveCities(city)
	if err != nil {
		return err
	}
	for _, c := range cities {
		if err := a.runCity(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) resolveCities(city string) ([]string, error) {
	if city == "" || city == "all" {
		return a.cfg.CityNames(), nil
	}
	if _, ok := a.cfg.Cities[city]; !ok {
		return nil, fmt.Errorf("%w: no configuration found for city %q", errUsage, city)
	}
	return []string{city}, nil
}

// citySources resolves a city's configured names through the catalogue.
// Unknown names are logged and skipped.
func (a *app) citySources(city string) []runner.Source {
	var out []runner.Source
	for _, sc := range a.cfg.Cities[city].Sources {
		src, ok := a.buildSource(sc)
		if !ok {
			a.log.Warn("❌ scraper not found", "city", city, "source", sc.Name)
			continue
		}
		out = append(out, src)
	}
	return out
}

func (a *app) buildSource(sc config.SourceConfig) (runner.Source, bool) {
	def, ok := sources.Lookup(sc.Name)
	if !ok {
		return runner.Source{}, false
	}
	return def.Source(a.fetcher(sc.Fetch), sources.Settings{
		URL:              sc.URL,
		ExcludeKeywords:  sc.ExcludeKeywords,
		PersistUnchanged: sc.PersistUnchanged,
		WebhookURL:       a.cfg.Webhook(def.WebhookEnv()),
	}, a.log), true
}

func (a *app) runCity(ctx context.Context, city string) error {
	a.log.Info("=== running city scrapers ===", "city", city)
	summaries, err := a.runner.RunAll(ctx, a.citySources(city))
	if rerr := a.reporter.SendRunSummary(city, summaries); rerr != nil {
		a.log.Warn("⚠️ failed to send run summary", "city", city, "error", rerr)
	}
	a.log.Info("=== completed city scrapers ===", "city", city, "sources", len(summaries))
	return err
}

// runSingle runs one source, using its settings from city when configured
// there.
func (a *app) runSingle(ctx context.Context, city, name string) error {
	src, ok := a.buildSource(a.sourceConfig(city, name))
	if !ok {
		return fmt.Errorf("%w: scraper not found: %s (known: %v)", errUsage, name, sources.Names())
	}
	_, err := a.runner.Run(ctx, src)
	return err
}

// sourceConfig finds name in city first, then in the first city in sorted
// order that lists it. Unconfigured sources get plain HTTP defaults.
func (a *app) sourceConfig(city, name string) config.SourceConfig {
	cities := a.cfg.CityNames()
	if city != "" && city != "all" {
		cities = append([]string{city}, cities...)
	}
	for _, c := range cities {
		for _, sc := range a.cfg.Cities[c].Sources {
			if sc.Name == name {
				return sc
			}
		}
	}
	return config.SourceConfig{Name: name, Fetch: config.FetchHTTP}
}

func (a *app) sendTestNotification(ctx context.Context, name string) error {
	def, ok := sources.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: -source must be one of %v", errUsage, sources.Names())
	}
	outcome, err := a.dispatcher.SendTest(ctx, def.Sample, def.TestTarget(a.cfg.Webhook(def.WebhookEnv())))
	if err != nil {
		a.log.Error("❌ test notification failed", "source", name, "error", err)
		return nil
	}
	a.log.Info("test notification finished", "source", name, "outcome", outcome)
	return nil
}

// lazyBrowser starts Chromium on first use, so runs that only need plain
// HTTP never pay for it. A launch failure surfaces as a fetch error.
type lazyBrowser struct {
	opts browser.Options
	pm   *browser.PlaywrightManager
}

func (b *lazyBrowser) Fetch(ctx context.Context, url string) (string, error) {
	if b.pm == nil {
		pm, err := browser.NewPlaywright(b.opts)
		if err != nil {
			return "", err
		}
		b.pm = pm
	}
	return b.pm.Fetch(ctx, url)
}

func (b *lazyBrowser) Close() {
	if b.pm != nil {
		_ = b.pm.Close()
	}
}
