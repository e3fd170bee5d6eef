package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-cityboard-automation/internal/dedup"
	"go-cityboard-automation/internal/logger"
	"go-cityboard-automation/internal/models"
	"go-cityboard-automation/internal/notify"
	"go-cityboard-automation/internal/snapshot"
)

type stubExtractor struct {
	records []models.Record
	err     error
}

func (s *stubExtractor) Scrape(context.Context) ([]models.Record, error) { return s.records, s.err }
func (s *stubExtractor) Name() string                                      { return "stub" }

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Dispatch(ctx context.Context, records []models.Record, target notify.Target) notify.Report {
	args := m.Called(ctx, records, target)
	return args.Get(0).(notify.Report)
}

// recordingNotifier delivers everything and remembers what it was given.
type recordingNotifier struct {
	calls [][]models.Record
}

func (n *recordingNotifier) Dispatch(_ context.Context, records []models.Record, _ notify.Target) notify.Report {
	n.calls = append(n.calls, records)
	return notify.Report{
		Total:    len(records),
		Attempts: 1,
		Batches:  []notify.BatchResult{{Start: 1, End: len(records), Outcome: notify.OutcomeDelivered}},
	}
}

type faultyStore struct {
	snapshot.Store
	loadErr error
	saveErr error
}

func (s *faultyStore) Load(ctx context.Context, id models.Identity) ([]models.Record, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.Store.Load(ctx, id)
}

func (s *faultyStore) Save(ctx context.Context, id models.Identity, records []models.Record) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Store.Save(ctx, id, records)
}

var torontoJobs = models.Identity{City: "toronto", Source: "techto", Kind: models.KindJobs}

func recs(links ...string) []models.Record {
	out := make([]models.Record, len(links))
	for i, l := range links {
		out[i] = models.Record{"title": "Job " + l, "link": l}
	}
	return out
}

func links(records []models.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Link()
	}
	return out
}

func newFileStore(t *testing.T) *snapshot.FileStore {
	return snapshot.NewFileStore(t.TempDir(), "data", logger.Discard())
}

func source(ex *stubExtractor, policy Policy) Source {
	return Source{
		Name:      "toronto-techto-jobs",
		Identity:  torontoJobs,
		Extractor: ex,
		Key:       dedup.LinkKey,
		Policy:    policy,
		Target:    notify.Target{WebhookURL: "https://discord.test/hook", Label: "Toronto Jobs - TechTO"},
	}
}

func TestRun_Scenario(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	require.NoError(t, store.Save(ctx, torontoJobs, recs("a", "b")))
	notifier := &recordingNotifier{}
	r := New(store, notifier, logger.Discard())

	sum, err := r.Run(ctx, source(&stubExtractor{records: recs("b", "c", "d")}, Policy{ReverseNew: true}))

	require.NoError(t, err)
	assert.Equal(t, StateDone, sum.State)
	assert.Equal(t, 3, sum.Found)
	assert.Equal(t, 2, sum.Previous)
	assert.Equal(t, 2, sum.New)
	assert.True(t, sum.Persisted)
	assert.Equal(t, 2, sum.Report.Delivered())

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, []string{"d", "c"}, links(notifier.calls[0]))

	stored, err := store.Load(ctx, torontoJobs)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "d"}, links(stored))
}

func TestRun_NoReverseKeepsOrder(t *testing.T) {
	notifier := &recordingNotifier{}
	r := New(newFileStore(t), notifier, logger.Discard())

	_, err := r.Run(context.Background(), source(&stubExtractor{records: recs("x", "y")}, Policy{}))

	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, links(notifier.calls[0]))
}

func TestRun_FirstRunSeeds(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	notifier := &recordingNotifier{}
	r := New(store, notifier, logger.Discard())

	sum, err := r.Run(ctx, source(&stubExtractor{records: recs("a", "b", "c")}, Policy{}))

	require.NoError(t, err)
	assert.Equal(t, 0, sum.Previous)
	assert.Equal(t, 3, sum.New)
	assert.Equal(t, 3, sum.Report.Delivered())
	stored, _ := store.Load(ctx, torontoJobs)
	assert.Len(t, stored, 3)
}

func TestRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	notifier := &recordingNotifier{}
	r := New(store, notifier, logger.Discard())
	src := source(&stubExtractor{records: recs("a", "b")}, Policy{})

	_, err := r.Run(ctx, src)
	require.NoError(t, err)
	sum, err := r.Run(ctx, src)

	require.NoError(t, err)
	assert.Equal(t, 0, sum.New)
	assert.False(t, sum.Persisted)
	assert.Equal(t, StateDone, sum.State)
	assert.Len(t, notifier.calls, 1, "second run must not notify")
}

func TestRun_PersistUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	require.NoError(t, store.Save(ctx, torontoJobs, recs("a", "b")))
	notifier := new(mockNotifier)
	r := New(store, notifier, logger.Discard())

	// "a" dropped off the page; nothing new, but the snapshot should follow.
	sum, err := r.Run(ctx, source(&stubExtractor{records: recs("b")}, Policy{PersistUnchanged: true}))

	require.NoError(t, err)
	assert.True(t, sum.Persisted)
	notifier.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	stored, _ := store.Load(ctx, torontoJobs)
	assert.Equal(t, []string{"b"}, links(stored))
}

func TestRun_EmptyScrapeKeepsHistory(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	require.NoError(t, store.Save(ctx, torontoJobs, recs("a", "b")))
	notifier := new(mockNotifier)
	r := New(store, notifier, logger.Discard())

	sum, err := r.Run(ctx, source(&stubExtractor{records: []models.Record{}}, Policy{PersistUnchanged: true}))

	require.NoError(t, err)
	assert.Equal(t, StateDone, sum.State)
	assert.False(t, sum.Persisted)
	notifier.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	stored, _ := store.Load(ctx, torontoJobs)
	assert.Equal(t, []string{"a", "b"}, links(stored))
}

func TestRun_FetchFailure(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	require.NoError(t, store.Save(ctx, torontoJobs, recs("a")))
	notifier := new(mockNotifier)
	r := New(store, notifier, logger.Discard())

	sum, err := r.Run(ctx, source(&stubExtractor{err: errors.New("503")}, Policy{}))

	require.NoError(t, err)
	assert.Equal(t, StateFailedFetch, sum.State)
	assert.Zero(t, sum.New)
	assert.False(t, sum.Persisted)
	notifier.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	stored, _ := store.Load(ctx, torontoJobs)
	assert.Equal(t, []string{"a"}, links(stored))
}

func TestRun_MissingWebhookStillPersists(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t)
	r := New(store, notify.NewDispatcher(), logger.Discard())
	src := source(&stubExtractor{records: recs("a", "b")}, Policy{})
	src.Target.WebhookURL = ""

	sum, err := r.Run(ctx, src)

	require.NoError(t, err)
	assert.Equal(t, StateDone, sum.State)
	assert.Zero(t, sum.Report.Attempts)
	assert.Equal(t, 1, sum.Report.Skipped())
	assert.True(t, sum.Persisted)
}

func TestRun_StoreFaults(t *testing.T) {
	tests := []struct {
		name  string
		store *faultyStore
		state State
	}{
		{name: "load", store: &faultyStore{loadErr: errors.New("redis down")}, state: StateFetched},
		{name: "save", store: &faultyStore{saveErr: errors.New("read-only fs")}, state: StateDiffed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.store.Store = newFileStore(t)
			notifier := new(mockNotifier)
			r := New(tt.store, notifier, logger.Discard())

			sum, err := r.Run(context.Background(), source(&stubExtractor{records: recs("a")}, Policy{}))

			require.Error(t, err)
			assert.Equal(t, tt.state, sum.State)
			notifier.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRunAll_StopsAtFault(t *testing.T) {
	store := &faultyStore{Store: newFileStore(t)}
	notifier := &recordingNotifier{}
	r := New(store, notifier, logger.Discard())

	ok := source(&stubExtractor{records: recs("a")}, Policy{})
	broken := source(&stubExtractor{records: recs("b")}, Policy{})
	broken.Identity = models.Identity{City: "toronto", Source: "techto", Kind: models.KindEvents}
	never := source(&stubExtractor{records: recs("c")}, Policy{})

	sums, err := r.RunAll(context.Background(), []Source{ok, {
		Name:      "broken",
		Identity:  broken.Identity,
		Extractor: &stubExtractor{err: errors.New("timeout")},
		Key:       dedup.LinkKey,
	}, never})

	require.NoError(t, err)
	require.Len(t, sums, 3)
	assert.Equal(t, StateFailedFetch, sums[1].State)

	store.loadErr = errors.New("connection refused")
	sums, err = r.RunAll(context.Background(), []Source{ok, never})

	require.Error(t, err)
	assert.Len(t, sums, 1)
}
