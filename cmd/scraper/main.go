package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"go-cityboard-automation/internal/config"
	"go-cityboard-automation/internal/logger"
	"go-cityboard-automation/internal/reporter"
)

const usage = `usage: scraper <command> [flags]

commands:
  run                     scrape, diff, persist and notify (-city, -source)
  send-test-notification  post one sample embed for -source
  schedule                run -city on a cron spec until interrupted
`

var errUsage = errors.New("bad usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run is the single fault boundary of the process: store faults and panics
// end here, get logged and mirrored to Telegram, and turn into exit code 1.
func run(args []string, stderr io.Writer) (code int) {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	cmd, cmdArgs := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultPath, "path to config.yaml")
	city := fs.String("city", "all", "city to run, or all")
	source := fs.String("source", "", "single source to run")
	spec := fs.String("spec", "", "cron spec for schedule (default from config)")
	if err := fs.Parse(cmdArgs); err != nil {
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "❌ config: %v\n", err)
		return 1
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("❌ failed to start", "error", err)
		return 1
	}
	defer a.Close()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.Error("💥 unhandled fault", "error", err, "stack", string(debug.Stack()))
			a.reportFault(err)
			code = 1
		}
	}()

	switch cmd {
	case "run":
		err = a.runCommand(ctx, *city, *source)
	case "send-test-notification":
		err = a.sendTestNotification(ctx, *source)
	case "schedule":
		s := *spec
		if s == "" {
			s = cfg.Schedule.Spec
		}
		err = a.schedule(ctx, *city, s)
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	switch {
	case err == nil:
		log.Info("🏁 execution finished")
		return 0
	case errors.Is(err, errUsage):
		log.Error("❌ "+err.Error())
		fmt.Fprint(stderr, usage)
		return 1
	default:
		log.Error("❌ unhandled fault", "error", err)
		a.reportFault(err)
		return 1
	}
}

// newReporter falls back to a no-op reporter when Telegram is not configured
// or cannot be reached.
func newReporter(cfg *config.Config, log *slog.Logger) reporter.Reporter {
	if !cfg.TelegramEnabled() {
		return reporter.Nop{}
	}
	r, err := reporter.NewTelegramReporter(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Warn("⚠️ telegram disabled", "error", err)
		return reporter.Nop{}
	}
	log.Info("🤖 telegram reporter initialized")
	return r
}
