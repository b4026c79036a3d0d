package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"eventscout/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventRepo is an in-memory EventRepository that enforces the
// (title, city) unique key, safe for concurrent use.
type fakeEventRepo struct {
	mu     sync.Mutex
	events []*domain.Event
	nextID int64

	getErr    error // if set, GetByNaturalKey returns this error
	createErr error // if set, Create returns this error
	listErr   error // if set, List returns this error
	// raceMiss makes lookups miss so Create is the only dedup gate,
	// simulating a concurrent run that inserted between check and write.
	raceMiss bool
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{nextID: 1}
}

func naturalKey(title string, city *string) string {
	if city == nil {
		return title + "\x00"
	}
	return title + "\x00" + *city
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := naturalKey(e.Title, e.City)
	for _, stored := range f.events {
		if naturalKey(stored.Title, stored.City) == key {
			return domain.ErrDuplicateEvent
		}
	}
	e.ID = f.nextID
	f.nextID++
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.events {
		if stored.ID == id {
			return stored, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetByNaturalKey(ctx context.Context, title string, city *string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.raceMiss {
		return nil, domain.ErrNotFound
	}
	key := naturalKey(title, city)
	for _, stored := range f.events {
		if naturalKey(stored.Title, stored.City) == key {
			return stored, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Event, 0)
	for _, e := range f.events {
		if filter.City != nil && (e.City == nil || *e.City != *filter.City) {
			continue
		}
		if len(filter.Categories) > 0 {
			if e.Category == nil {
				continue
			}
			found := false
			for _, c := range filter.Categories {
				if *e.Category == c {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventRepo) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// fakeSource implements domain.EventSource.
type fakeSource struct {
	batch []domain.FeedEvent
	err   error
}

func (f *fakeSource) Fetch(ctx context.Context) ([]domain.FeedEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.batch, nil
}

// fakeNotifier implements domain.NotificationService and records calls.
type fakeNotifier struct {
	mu     sync.Mutex
	called [][]*domain.Event
	err    error
}

func (f *fakeNotifier) NotifyNewEvents(ctx context.Context, events []*domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = append(f.called, events)
	return f.err
}

func (f *fakeNotifier) ListNotifications(ctx context.Context, email string) ([]*domain.Notification, error) {
	return nil, nil
}

func date(y int, m time.Month, d int) *domain.Date {
	return &domain.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ptr(s string) *string { return &s }

func jazzNightBatch() []domain.FeedEvent {
	return []domain.FeedEvent{
		{
			Title:    "Jazz Night",
			Category: ptr("Music"),
			Location: ptr("Ahmedabad"),
			Date:     date(2025, 5, 1),
			URL:      ptr("https://example.com/jazz"),
		},
	}
}

func TestEventService_IngestFeed_InsertsNewEvents(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, nil, nil, testLogger, time.Second)

	inserted, err := svc.IngestFeed(ctx, jazzNightBatch())
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	require.Equal(t, 1, repo.len())

	stored := repo.events[0]
	assert.Equal(t, "Jazz Night", stored.Title)
	assert.Equal(t, domain.StatusUpcoming, stored.Status)
	require.NotNil(t, stored.City)
	assert.Equal(t, "Ahmedabad", *stored.City)
	// The feed's single date becomes both start and end.
	require.NotNil(t, stored.StartDate)
	require.NotNil(t, stored.EndDate)
	assert.Equal(t, "2025-05-01", stored.StartDate.String())
	assert.Equal(t, "2025-05-01", stored.EndDate.String())
}

func TestEventService_IngestFeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, nil, nil, testLogger, time.Second)

	first, err := svc.IngestFeed(ctx, jazzNightBatch())
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := svc.IngestFeed(ctx, jazzNightBatch())
	require.NoError(t, err)
	assert.Equal(t, 0, second, "re-running the same batch must not grow the store")
	assert.Equal(t, 1, repo.len())
}

func TestEventService_IngestFeed_SkipsRecordsWithoutTitle(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, nil, nil, testLogger, time.Second)

	batch := []domain.FeedEvent{
		{Title: "Go Conf", Location: ptr("Mumbai"), Category: ptr("Tech")},
		{Title: "   ", Location: ptr("Mumbai")},
		{Title: "Art Walk", Location: ptr("Mumbai"), Category: ptr("Art")},
	}
	inserted, err := svc.IngestFeed(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted, "one bad record must not abort the batch")
	assert.Equal(t, 2, repo.len())
}

func TestEventService_IngestFeed_DuplicateInsertTreatedAsPresent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, nil, nil, testLogger, time.Second)

	first, err := svc.IngestFeed(ctx, jazzNightBatch())
	require.NoError(t, err)
	require.Equal(t, 1, first)

	// Lookups miss from here on, so the unique key at Create is the only
	// guard, mirroring a lost race against a concurrent run.
	repo.raceMiss = true
	second, err := svc.IngestFeed(ctx, jazzNightBatch())
	require.NoError(t, err, "losing the insert race is not a batch failure")
	assert.Equal(t, 0, second)
	assert.Equal(t, 1, repo.len())
}

func TestEventService_IngestFeed_StoreErrorAbortsRun(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	repo.getErr = errors.New("connection refused")
	svc := NewEventService(repo, nil, nil, testLogger, time.Second)

	_, err := svc.IngestFeed(ctx, jazzNightBatch())
	require.Error(t, err)
	assert.Equal(t, 0, repo.len())
}

func TestEventService_IngestFeed_ConcurrentRunsConverge(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	svc := NewEventService(repo, nil, nil, testLogger, time.Second)
	batch := jazzNightBatch()

	var wg sync.WaitGroup
	results := make([]int, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.IngestFeed(ctx, batch)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	assert.Equal(t, 1, repo.len(), "exactly one event for the natural key")
	assert.Equal(t, 1, results[0]+results[1], "exactly one run reports the insert")
}

func seedCatalog(t *testing.T, repo *fakeEventRepo) {
	t.Helper()
	ctx := context.Background()
	svc := NewEventService(repo, nil, nil, testLogger, time.Second)
	_, err := svc.IngestFeed(ctx, []domain.FeedEvent{
		{Title: "Jazz Night", Location: ptr("Ahmedabad"), Category: ptr("Music")},
		{Title: "Go Conf", Location: ptr("Mumbai"), Category: ptr("Tech")},
		{Title: "Street Food Fest", Location: ptr("Ahmedabad"), Category: ptr("Food")},
	})
	require.NoError(t, err)
}

func TestEventService_ListEvents(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		city       string
		interests  []string
		wantTitles []string
	}{
		{
			name:       "no filters returns all",
			wantTitles: []string{"Jazz Night", "Go Conf", "Street Food Fest"},
		},
		{
			name:       "city only",
			city:       "Ahmedabad",
			wantTitles: []string{"Jazz Night", "Street Food Fest"},
		},
		{
			name:       "interests only",
			interests:  []string{"Tech", "Art"},
			wantTitles: []string{"Go Conf"},
		},
		{
			name:       "city and interests combine with AND",
			city:       "Ahmedabad",
			interests:  []string{"Music"},
			wantTitles: []string{"Jazz Night"},
		},
		{
			name:       "no match is an empty result, not an error",
			city:       "Ahmedabad",
			interests:  []string{"Tech", "Art"},
			wantTitles: []string{},
		},
		{
			name:       "blank interests entries are ignored",
			interests:  []string{" ", ""},
			wantTitles: []string{"Jazz Night", "Go Conf", "Street Food Fest"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			seedCatalog(t, repo)
			svc := NewEventService(repo, nil, nil, testLogger, time.Second)

			events, err := svc.ListEvents(ctx, tt.city, tt.interests)
			require.NoError(t, err)
			titles := make([]string, 0, len(events))
			for _, e := range events {
				titles = append(titles, e.Title)
			}
			assert.ElementsMatch(t, tt.wantTitles, titles)
		})
	}
}

func TestEventService_GetEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored event", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, nil, nil, testLogger, time.Second)
		_, err := svc.IngestFeed(ctx, jazzNightBatch())
		require.NoError(t, err)
		id := repo.events[0].ID

		event, err := svc.GetEvent(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Jazz Night", event.Title)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, nil, nil, testLogger, time.Second)

		_, err := svc.GetEvent(ctx, 999)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("store error", func(t *testing.T) {
		repo := newFakeEventRepo()
		repo.getErr = errors.New("connection refused")
		svc := NewEventService(repo, nil, nil, testLogger, time.Second)

		_, err := svc.GetEvent(ctx, 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventService_ListEvents_StoreError(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	repo.listErr = errors.New("connection refused")
	svc := NewEventService(repo, nil, nil, testLogger, time.Second)

	events, err := svc.ListEvents(ctx, "", nil)
	require.Error(t, err)
	assert.Nil(t, events)
}

func TestEventService_SyncFromSource(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches, ingests, and notifies", func(t *testing.T) {
		repo := newFakeEventRepo()
		source := &fakeSource{batch: jazzNightBatch()}
		notifier := &fakeNotifier{}
		svc := NewEventService(repo, source, notifier, testLogger, time.Second)

		inserted, err := svc.SyncFromSource(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, inserted)
		require.Len(t, notifier.called, 1)
		require.Len(t, notifier.called[0], 1)
		assert.Equal(t, "Jazz Night", notifier.called[0][0].Title)
	})

	t.Run("no new events skips notification", func(t *testing.T) {
		repo := newFakeEventRepo()
		source := &fakeSource{batch: jazzNightBatch()}
		notifier := &fakeNotifier{}
		svc := NewEventService(repo, source, notifier, testLogger, time.Second)

		_, err := svc.SyncFromSource(ctx)
		require.NoError(t, err)
		inserted, err := svc.SyncFromSource(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, inserted)
		assert.Len(t, notifier.called, 1, "second sync inserted nothing, so no new notification")
	})

	t.Run("notifier failure does not fail the sync", func(t *testing.T) {
		repo := newFakeEventRepo()
		source := &fakeSource{batch: jazzNightBatch()}
		notifier := &fakeNotifier{err: errors.New("smtp down")}
		svc := NewEventService(repo, source, notifier, testLogger, time.Second)

		inserted, err := svc.SyncFromSource(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, inserted)
	})

	t.Run("source failure surfaces", func(t *testing.T) {
		repo := newFakeEventRepo()
		source := &fakeSource{err: errors.New("feed unreachable")}
		svc := NewEventService(repo, source, nil, testLogger, time.Second)

		_, err := svc.SyncFromSource(ctx)
		require.Error(t, err)
		assert.Equal(t, 0, repo.len())
	})

	t.Run("no source configured", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, nil, nil, testLogger, time.Second)

		_, err := svc.SyncFromSource(ctx)
		require.Error(t, err)
	})
}
