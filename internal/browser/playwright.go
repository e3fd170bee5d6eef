// Package browser renders pages in headless Chromium for sites whose
// listings only appear after client-side scripts run.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"go-cityboard-automation/internal/logger"
	"go-cityboard-automation/utils"
)

type Options struct {
	UserAgent string
	Timeout   time.Duration
	// ScreenshotDir receives a full-page capture when navigation fails.
	// Empty disables screenshots.
	ScreenshotDir string
	Log           *slog.Logger
}

// PlaywrightManager owns one browser process and fetches pages through fresh
// contexts, so nothing carries over between sources.
type PlaywrightManager struct {
	pw          *playwright.Playwright
	browser     playwright.Browser
	userAgent   string
	timeout     time.Duration
	screenshots *utils.ScreenShotDebugger
	log         *slog.Logger
}

func NewPlaywright(opts Options) (*PlaywrightManager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	pm := &PlaywrightManager{
		pw:        pw,
		browser:   browser,
		userAgent: opts.UserAgent,
		timeout:   timeout,
		log:       log.With("component", "browser"),
	}
	if opts.ScreenshotDir != "" {
		pm.screenshots = utils.NewScreenShotDebugger(opts.ScreenshotDir, pm.log)
	}
	return pm, nil
}

// Fetch navigates to url, scrolls to trigger lazy loading and returns the
// rendered HTML.
func (pm *PlaywrightManager) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	opts := playwright.BrowserNewContextOptions{}
	if pm.userAgent != "" {
		opts.UserAgent = playwright.String(pm.userAgent)
	}
	browserCtx, err := pm.browser.NewContext(opts)
	if err != nil {
		return "", fmt.Errorf("new browser context: %w", err)
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		return "", fmt.Errorf("new page: %w", err)
	}

	resp, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(pm.timeout.Milliseconds())),
	})
	if err != nil {
		pm.capture(page, url)
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	if resp != nil && resp.Status() >= 400 {
		pm.capture(page, url)
		return "", fmt.Errorf("navigate %s: status %d", url, resp.Status())
	}

	if err := ScrollToBottom(page); err != nil {
		pm.log.Warn("⚠️ scrolling failed, using page as loaded", "url", url, "error", err)
	}

	return page.Content()
}

func (pm *PlaywrightManager) capture(page playwright.Page, url string) {
	if pm.screenshots == nil {
		return
	}
	name := strings.NewReplacer("https://", "", "http://", "", "/", "_", "?", "_").Replace(url)
	_ = pm.screenshots.CaptureAndLog(page, name, "navigation failed for "+url)
}

func (pm *PlaywrightManager) Close() error {
	if err := pm.browser.Close(); err != nil {
		return fmt.Errorf("close chromium: %w", err)
	}
	return pm.pw.Stop()
}
