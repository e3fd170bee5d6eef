package utils

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ScreenShotDebugger saves full-page captures of pages that failed to load.
type ScreenShotDebugger struct {
	outputDir string
	log       *slog.Logger
}

func NewScreenShotDebugger(dir string, log *slog.Logger) *ScreenShotDebugger {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn("⚠️ cannot create screenshot dir", "dir", dir, "error", err)
	}
	return &ScreenShotDebugger{outputDir: dir, log: log}
}

// Path is where a capture named name taken at ts is written.
func (s *ScreenShotDebugger) Path(name string, ts time.Time) string {
	return filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, ts.Format("2006-01-02_15-04-05")))
}

func (s *ScreenShotDebugger) CaptureAndLog(page playwright.Page, name, message string) error {
	path := s.Path(name, time.Now())
	s.log.Info("📸 "+message, "screenshot", path)

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		s.log.Warn("⚠️ failed to capture screenshot", "error", err)
		return err
	}
	return nil
}
