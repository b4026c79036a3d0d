package domain

import (
	"context"
	"time"
)

// Notification records that a user was told about a newly ingested event.
type Notification struct {
	ID        int64     `json:"id"`
	UserEmail string    `json:"user_email"`
	EventID   int64     `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationRepository defines the interface for notification storage
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByEmail(ctx context.Context, email string) ([]*Notification, error)
}

// Mailer sends a single email. Implementations may use SES or be no-ops.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EventAlertEmailData carries the fields rendered into a new-event alert email.
type EventAlertEmailData struct {
	Name       string
	EventTitle string
	EventCity  string
	EventDate  string
	Link       string
}

// EmailRenderer renders the new-event alert email body.
type EmailRenderer interface {
	RenderEventAlert(data *EventAlertEmailData) (html, text string, err error)
}

// NotificationService fans newly ingested events out to users in the
// matching city.
type NotificationService interface {
	NotifyNewEvents(ctx context.Context, events []*Event) error
	// ListNotifications returns the notifications recorded for a user,
	// newest first.
	ListNotifications(ctx context.Context, email string) ([]*Notification, error)
}
