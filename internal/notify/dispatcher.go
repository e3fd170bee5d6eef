// Package notify turns new records into batched Discord messages.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go-cityboard-automation/internal/discord"
	"go-cityboard-automation/internal/logger"
	"go-cityboard-automation/internal/models"
)

const DefaultPause = time.Second

// Sink delivers one payload to a webhook.
type Sink interface {
	Send(ctx context.Context, payload discord.Payload) error
}

// Target is where and how a source's records are announced.
type Target struct {
	WebhookURL string
	// WebhookEnv names the variable WebhookURL came from, for log lines.
	WebhookEnv string
	Label      string
	Color      int
	Describe   func(models.Record) string
}

type Dispatcher struct {
	pause   time.Duration
	sleep   func(ctx context.Context, d time.Duration)
	newSink func(url string) Sink
	log     *slog.Logger
}

type Option func(*Dispatcher)

// WithPause sets the gap between consecutive batches.
func WithPause(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.pause = d }
}

// WithSleeper replaces the pause implementation, mostly for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(disp *Dispatcher) { disp.sleep = sleep }
}

func WithSinkFactory(newSink func(url string) Sink) Option {
	return func(disp *Dispatcher) { disp.newSink = newSink }
}

func WithLogger(log *slog.Logger) Option {
	return func(disp *Dispatcher) { disp.log = log }
}

func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		pause: DefaultPause,
		sleep: sleepCtx,
		newSink: func(url string) Sink {
			return discord.NewWebhookClient(url, nil)
		},
		log: logger.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("component", "notify")
	return d
}

// Dispatch announces records in order, in batches of MaxBatchSize. A failed
// batch is logged and does not stop the ones after it.
func (d *Dispatcher) Dispatch(ctx context.Context, records []models.Record, target Target) Report {
	batches := Partition(records, MaxBatchSize)
	report := Report{Total: len(records), Batches: make([]BatchResult, 0, len(batches))}
	if len(batches) == 0 {
		return report
	}

	if target.WebhookURL == "" {
		d.log.Warn("⚠️ webhook not configured, skipping notifications",
			"env", target.WebhookEnv, "records", len(records))
		for _, b := range batches {
			report.Batches = append(report.Batches, result(b, OutcomeSkippedNoConfig, nil))
		}
		return report
	}

	sink := d.newSink(target.WebhookURL)
	for i, b := range batches {
		if i > 0 && d.pause > 0 {
			d.sleep(ctx, d.pause)
		}

		report.Attempts++
		err := sink.Send(ctx, Payload(b, target))
		if err != nil {
			d.logFailure(b, err)
			report.Batches = append(report.Batches, result(b, OutcomeFailed, err))
			continue
		}
		d.log.Info("📨 sent batch", "label", target.Label, "batch", b.Index+1,
			"range", fmt.Sprintf("%d-%d", b.Start, b.End), "total", b.Total)
		report.Batches = append(report.Batches, result(b, OutcomeDelivered, nil))
	}
	return report
}

// SendTest posts a single sample embed so the webhook can be checked by hand.
func (d *Dispatcher) SendTest(ctx context.Context, sample models.Record, target Target) (Outcome, error) {
	if target.WebhookURL == "" {
		d.log.Warn("⚠️ webhook not configured, no test message sent", "env", target.WebhookEnv)
		return OutcomeSkippedNoConfig, nil
	}
	payload := discord.Payload{Embeds: []discord.Embed{
		embed(sample, target, "Test Message - "+target.Label),
	}}
	if err := d.newSink(target.WebhookURL).Send(ctx, payload); err != nil {
		return OutcomeFailed, err
	}
	d.log.Info("✅ test notification sent", "label", target.Label)
	return OutcomeDelivered, nil
}

// Payload builds the webhook body for one batch.
func Payload(b Batch, target Target) discord.Payload {
	footer := fmt.Sprintf("%s (%d-%d of %d)", target.Label, b.Start, b.End, b.Total)
	embeds := make([]discord.Embed, 0, len(b.Records))
	for _, rec := range b.Records {
		embeds = append(embeds, embed(rec, target, footer))
	}
	return discord.Payload{Embeds: embeds}
}

func embed(rec models.Record, target Target, footer string) discord.Embed {
	desc := ""
	if target.Describe != nil {
		desc = target.Describe(rec)
	}
	return discord.Embed{
		Title:       rec.Title(),
		URL:         rec.Link(),
		Color:       target.Color,
		Description: desc,
		Footer:      &discord.Footer{Text: footer},
	}
}

func (d *Dispatcher) logFailure(b Batch, err error) {
	args := []any{"batch", b.Index + 1, "range", fmt.Sprintf("%d-%d", b.Start, b.End), "total", b.Total}
	var delivery *discord.DeliveryError
	if errors.As(err, &delivery) {
		args = append(args, "status", delivery.Status, "body", delivery.Body)
	} else {
		args = append(args, "error", err)
	}
	d.log.Error("❌ failed to send batch", args...)
}

func result(b Batch, o Outcome, err error) BatchResult {
	return BatchResult{Index: b.Index, Start: b.Start, End: b.End, Outcome: o, Err: err}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
