package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventscout/internal/domain"
	"eventscout/internal/metrics"
)

type eventService struct {
	eventRepo      domain.EventRepository
	source         domain.EventSource
	notifier       domain.NotificationService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService creates an EventService backed by the given repository.
// source and notifier may be nil; SyncFromSource then fails and fan-out is
// skipped, respectively.
func NewEventService(eventRepo domain.EventRepository,
	source domain.EventSource,
	notifier domain.NotificationService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		source:         source,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) IngestFeed(ctx context.Context, batch []domain.FeedEvent) (int, error) {
	inserted, err := s.ingest(ctx, batch)
	return len(inserted), err
}

// ingest processes batch records in input order and returns the events it
// created. A record with no usable title is skipped; a record whose natural
// key already exists (or loses an insert race) is skipped. Any other store
// error aborts the run; the events inserted so far are still returned.
func (s *eventService) ingest(ctx context.Context, batch []domain.FeedEvent) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	metrics.IngestRuns.Inc()
	inserted := make([]*domain.Event, 0)
	for _, rec := range batch {
		title := strings.TrimSpace(rec.Title)
		if title == "" {
			s.logger.WarnContext(ctx, "skipping feed record without title")
			metrics.IngestRecords.WithLabelValues(metrics.OutcomeMalformed).Inc()
			continue
		}

		_, err := s.eventRepo.GetByNaturalKey(ctx, title, rec.Location)
		if err == nil {
			metrics.IngestRecords.WithLabelValues(metrics.OutcomeDuplicate).Inc()
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return inserted, fmt.Errorf("lookup event: %w", err)
		}

		event := domain.NewEventFromFeed(rec)
		if err := s.eventRepo.Create(ctx, event); err != nil {
			if errors.Is(err, domain.ErrDuplicateEvent) {
				// A concurrent run won the insert race; same as already present.
				metrics.IngestRecords.WithLabelValues(metrics.OutcomeDuplicate).Inc()
				continue
			}
			return inserted, fmt.Errorf("create event: %w", err)
		}
		metrics.IngestRecords.WithLabelValues(metrics.OutcomeInserted).Inc()
		inserted = append(inserted, event)
	}
	return inserted, nil
}

func (s *eventService) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, city string, interests []string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter := domain.EventFilter{}
	if city != "" {
		filter.City = &city
	}
	for _, interest := range interests {
		if interest = strings.TrimSpace(interest); interest != "" {
			filter.Categories = append(filter.Categories, interest)
		}
	}

	metrics.EventQueries.Inc()
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) SyncFromSource(ctx context.Context) (int, error) {
	if s.source == nil {
		return 0, fmt.Errorf("no feed source configured")
	}
	batch, err := s.source.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch feed: %w", err)
	}

	inserted, err := s.ingest(ctx, batch)
	if err != nil {
		return len(inserted), err
	}
	s.logger.InfoContext(ctx, "feed sync finished", "fetched", len(batch), "inserted", len(inserted))

	if s.notifier != nil && len(inserted) > 0 {
		// Notification failures must not fail an otherwise successful sync.
		if err := s.notifier.NotifyNewEvents(ctx, inserted); err != nil {
			s.logger.ErrorContext(ctx, "notify new events", "err", err)
		}
	}
	return len(inserted), nil
}
