// Package runner executes one scraper run end to end: fetch, diff, persist,
// notify.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"go-cityboard-automation/internal/dedup"
	"go-cityboard-automation/internal/logger"
	"go-cityboard-automation/internal/models"
	"go-cityboard-automation/internal/notify"
	"go-cityboard-automation/internal/scraper"
	"go-cityboard-automation/internal/snapshot"
)

type State string

const (
	StateFetched     State = "FETCHED"
	StateDiffed      State = "DIFFED"
	StatePersisted   State = "PERSISTED"
	StateNotified    State = "NOTIFIED"
	StateDone        State = "DONE"
	StateFailedFetch State = "FAILED_FETCH"
)

// Policy holds the per-source choices that differ between sites.
type Policy struct {
	// ReverseNew delivers the new records last-listed-first, so the newest
	// posting ends up at the bottom of the channel.
	ReverseNew bool
	// PersistUnchanged also rewrites the snapshot when nothing is new.
	PersistUnchanged bool
}

// Source is everything the runner needs for one scraper.
type Source struct {
	Name      string
	Identity  models.Identity
	Extractor scraper.Extractor
	Key       dedup.KeyFunc
	Policy    Policy
	Target    notify.Target
}

type Notifier interface {
	Dispatch(ctx context.Context, records []models.Record, target notify.Target) notify.Report
}

type Summary struct {
	Name      string
	Identity  models.Identity
	State     State
	Found     int
	Previous  int
	New       int
	Persisted bool
	Report    notify.Report
}

type Runner struct {
	store    snapshot.Store
	notifier Notifier
	log      *slog.Logger
}

func New(store snapshot.Store, notifier Notifier, log *slog.Logger) *Runner {
	if log == nil {
		log = logger.Discard()
	}
	return &Runner{store: store, notifier: notifier, log: log.With("component", "runner")}
}

// Run performs one run for src. A failed fetch is logged and ends the run
// with StateFailedFetch and a nil error. Errors returned are store faults the
// caller should treat as fatal; in that case no notification has been sent.
func (r *Runner) Run(ctx context.Context, src Source) (Summary, error) {
	log := r.log.With("source", src.Name, "snapshot", src.Identity.Key())
	sum := Summary{Name: src.Name, Identity: src.Identity}

	current, err := src.Extractor.Scrape(ctx)
	if err != nil {
		log.Error("❌ scrape failed, keeping previous snapshot", "error", err)
		sum.State = StateFailedFetch
		return sum, nil
	}
	sum.State = StateFetched
	sum.Found = len(current)

	previous, err := r.store.Load(ctx, src.Identity)
	if err != nil {
		return sum, fmt.Errorf("load snapshot %s: %w", src.Identity, err)
	}
	fresh := dedup.Diff(previous, current, src.Key)
	sum.State = StateDiffed
	sum.Previous = len(previous)
	sum.New = len(fresh)
	log.Info("🔍 compared listings", "current", len(current), "previous", len(previous), "new", len(fresh))

	if shouldPersist(len(current), len(fresh), src.Policy) {
		if err := r.store.Save(ctx, src.Identity, current); err != nil {
			return sum, fmt.Errorf("save snapshot %s: %w", src.Identity, err)
		}
		sum.Persisted = true
	}
	sum.State = StatePersisted

	if len(fresh) > 0 {
		outgoing := fresh
		if src.Policy.ReverseNew {
			outgoing = dedup.Reverse(fresh)
		}
		for _, rec := range outgoing {
			log.Debug("🆕 new listing", "title", rec.Title(), "link", rec.Link())
		}
		sum.Report = r.notifier.Dispatch(ctx, outgoing, src.Target)
	}
	sum.State = StateNotified

	sum.State = StateDone
	log.Info("✅ run complete",
		"found", sum.Found,
		"previous", sum.Previous,
		"new", sum.New,
		"delivered", sum.Report.Delivered(),
		"failed_batches", sum.Report.Failed(),
		"persisted", sum.Persisted,
	)
	return sum, nil
}

// RunAll runs sources one after another and stops at the first store fault.
func (r *Runner) RunAll(ctx context.Context, sources []Source) ([]Summary, error) {
	summaries := make([]Summary, 0, len(sources))
	for _, src := range sources {
		r.log.Info("🔄 running scraper", "source", src.Name)
		sum, err := r.Run(ctx, src)
		summaries = append(summaries, sum)
		if err != nil {
			return summaries, err
		}
	}
	return summaries, nil
}

// An empty scrape never overwrites history, so a broken page cannot wipe it.
func shouldPersist(found, fresh int, p Policy) bool {
	if found == 0 {
		return false
	}
	return fresh > 0 || p.PersistUnchanged
}
