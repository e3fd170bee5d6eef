// Package reporter mirrors run summaries and faults to a Telegram chat.
package reporter

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-cityboard-automation/internal/runner"
)

// Reporter receives one line per city run and any fatal fault.
type Reporter interface {
	SendRunSummary(city string, summaries []runner.Summary) error
	SendError(err error) error
}

type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(token string, chatID int64) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramReporter{bot: bot, chatID: chatID}, nil
}

func NewTelegramReporterWithBot(bot *tgbotapi.BotAPI, chatID int64) *TelegramReporter {
	return &TelegramReporter{bot: bot, chatID: chatID}
}

func (t *TelegramReporter) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := t.bot.Send(msg)
	return err
}

func (t *TelegramReporter) SendRunSummary(city string, summaries []runner.Summary) error {
	return t.SendMessage(Summarize(city, summaries))
}

func (t *TelegramReporter) SendError(errReq error) error {
	text := fmt.Sprintf("⚠️ <b>Cityboard Error</b>:\n%s", escape(errReq.Error()))
	return t.SendMessage(text)
}

// Summarize renders a city run as a short HTML message, e.g.
// "toronto: 3 new across 2 sources, 3 delivered".
func Summarize(city string, summaries []runner.Summary) string {
	var fresh, delivered, failedBatches, skipped int
	var failedFetch []string
	for _, s := range summaries {
		fresh += s.New
		delivered += s.Report.Delivered()
		failedBatches += s.Report.Failed()
		skipped += s.Report.Skipped()
		if s.State == runner.StateFailedFetch {
			failedFetch = append(failedFetch, s.Name)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏙️ <b>%s</b>: %d new across %d %s, %d delivered",
		escape(city), fresh, len(summaries), plural(len(summaries), "source", "sources"), delivered)
	if failedBatches > 0 {
		fmt.Fprintf(&b, "\n❌ %d failed %s", failedBatches, plural(failedBatches, "batch", "batches"))
	}
	if skipped > 0 {
		fmt.Fprintf(&b, "\n⚠️ %d %s skipped, webhook not configured", skipped, plural(skipped, "batch", "batches"))
	}
	if len(failedFetch) > 0 {
		fmt.Fprintf(&b, "\n🚫 fetch failed: %s", escape(strings.Join(failedFetch, ", ")))
	}
	return b.String()
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
