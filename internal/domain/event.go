package domain

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors for event operations.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEvent = errors.New("event already exists")
	ErrInvalidInput   = errors.New("invalid input")
)

// StatusUpcoming is the lifecycle status assigned to freshly ingested events.
const StatusUpcoming = "upcoming"

// Event represents one occurrence of a real-world happening. Events are
// created by the ingestion pipeline and are immutable once stored. The
// (title, city) pair is the natural key: no two stored events share it.
type Event struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Description      *string `json:"description"`
	Category         *string `json:"category"`
	City             *string `json:"city"`
	StartDate        *Date   `json:"start_date"`
	EndDate          *Date   `json:"end_date"`
	RegistrationLink *string `json:"registration_link"`
	Status           string  `json:"status"`
}

// FeedEvent is one externally-sourced candidate event description. It exists
// only for the duration of an ingestion run and is never persisted as-is.
// Subcategory is carried by some feeds but has no stored counterpart.
type FeedEvent struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Subcategory *string `json:"subcategory"`
	Location    *string `json:"location"`
	Date        *Date   `json:"date"`
	URL         *string `json:"url"`
}

// NewEventFromFeed builds a storable Event from a feed record. The feed
// carries a single date, which becomes both start and end; status is always
// "upcoming" on creation.
func NewEventFromFeed(rec FeedEvent) *Event {
	return &Event{
		Title:            strings.TrimSpace(rec.Title),
		Description:      rec.Description,
		Category:         rec.Category,
		City:             rec.Location,
		StartDate:        rec.Date,
		EndDate:          rec.Date,
		RegistrationLink: rec.URL,
		Status:           StatusUpcoming,
	}
}

// EventFilter is a partial predicate over stored events. Nil City means no
// city restriction; an empty Categories slice means no category restriction.
type EventFilter struct {
	City       *string
	Categories []string
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	// Create persists a new event and assigns its ID. It returns
	// ErrDuplicateEvent when an event with the same (title, city) pair
	// already exists.
	Create(ctx context.Context, event *Event) error
	// GetByID returns the event with the given ID, or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*Event, error)
	// GetByNaturalKey returns the event matching title and city exactly;
	// a nil city matches only events with no city. Misses return ErrNotFound.
	GetByNaturalKey(ctx context.Context, title string, city *string) (*Event, error)
	// List returns events matching the filter, in insertion order.
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
}

// EventSource produces a batch of candidate events from an external feed.
type EventSource interface {
	Fetch(ctx context.Context) ([]FeedEvent, error)
}

// EventService defines the business logic for event ingestion and retrieval.
type EventService interface {
	// IngestFeed deduplicates the batch against the store and persists new
	// events, returning how many were inserted. Records with an empty title
	// and records already present are skipped without failing the batch.
	IngestFeed(ctx context.Context, batch []FeedEvent) (int, error)
	// GetEvent returns a single stored event by ID, or ErrNotFound.
	GetEvent(ctx context.Context, id int64) (*Event, error)
	// ListEvents returns events filtered by city and interest categories.
	// An empty city or empty interests list means no restriction on that axis.
	ListEvents(ctx context.Context, city string, interests []string) ([]*Event, error)
	// SyncFromSource fetches the configured feed and ingests it.
	SyncFromSource(ctx context.Context) (int, error)
}
