package reporter

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-cityboard-automation/internal/notify"
	"go-cityboard-automation/internal/runner"
)

type fakeTelegram struct {
	mu   sync.Mutex
	sent []map[string]string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"cityboard","username":"cityboard_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.sent = append(f.sent, map[string]string{
			"chat_id":    r.FormValue("chat_id"),
			"text":       r.FormValue("text"),
			"parse_mode": r.FormValue("parse_mode"),
		})
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":-1001,"type":"group"}}}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestReporter(t *testing.T) (*TelegramReporter, *fakeTelegram) {
	t.Helper()
	fake := &fakeTelegram{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	bot, err := tgbotapi.NewBotAPIWithClient("123:abc", srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)
	return NewTelegramReporterWithBot(bot, -1001), fake
}

func delivered(n int) notify.Report {
	return notify.Report{Total: n, Attempts: 1, Batches: []notify.BatchResult{{Start: 1, End: n, Outcome: notify.OutcomeDelivered}}}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		summaries []runner.Summary
		want      string
	}{
		{
			name: "all delivered",
			summaries: []runner.Summary{
				{Name: "toronto-techto-jobs", State: runner.StateDone, New: 3, Report: delivered(3)},
				{Name: "toronto-techto-events", State: runner.StateDone},
			},
			want: "🏙️ <b>toronto</b>: 3 new across 2 sources, 3 delivered",
		},
		{
			name: "failures",
			summaries: []runner.Summary{
				{Name: "toronto-techto-jobs", State: runner.StateDone, New: 12, Report: notify.Report{Batches: []notify.BatchResult{
					{Start: 1, End: 10, Outcome: notify.OutcomeDelivered},
					{Start: 11, End: 12, Outcome: notify.OutcomeFailed},
				}}},
				{Name: "toronto-techto-events", State: runner.StateFailedFetch},
			},
			want: "🏙️ <b>toronto</b>: 12 new across 2 sources, 10 delivered\n❌ 1 failed batch\n🚫 fetch failed: toronto-techto-events",
		},
		{
			name: "no webhook",
			summaries: []runner.Summary{
				{Name: "toronto-techto-jobs", State: runner.StateDone, New: 1, Report: notify.Report{Batches: []notify.BatchResult{
					{Start: 1, End: 1, Outcome: notify.OutcomeSkippedNoConfig},
				}}},
			},
			want: "🏙️ <b>toronto</b>: 1 new across 1 source, 0 delivered\n⚠️ 1 batch skipped, webhook not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize("toronto", tt.summaries))
		})
	}
}

func TestTelegramReporter_SendRunSummary(t *testing.T) {
	r, fake := newTestReporter(t)

	err := r.SendRunSummary("halifax", []runner.Summary{{Name: "halifax-dns-jobs", State: runner.StateDone, New: 2, Report: delivered(2)}})

	require.NoError(t, err)
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "-1001", fake.sent[0]["chat_id"])
	assert.Equal(t, "HTML", fake.sent[0]["parse_mode"])
	assert.Equal(t, "🏙️ <b>halifax</b>: 2 new across 1 source, 2 delivered", fake.sent[0]["text"])
}

func TestTelegramReporter_SendErrorEscapes(t *testing.T) {
	r, fake := newTestReporter(t)

	err := r.SendError(errors.New("save snapshot <halifax:dns:jobs>: disk full"))

	require.NoError(t, err)
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "⚠️ <b>Cityboard Error</b>:\nsave snapshot &lt;halifax:dns:jobs&gt;: disk full", fake.sent[0]["text"])
}

func TestNop(t *testing.T) {
	var r Reporter = Nop{}
	assert.NoError(t, r.SendRunSummary("x", nil))
	assert.NoError(t, r.SendError(errors.New("boom")))
}
