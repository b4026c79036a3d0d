package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventscout/internal/domain"
)

type notificationService struct {
	notificationRepo domain.NotificationRepository
	userRepo         domain.UserRepository
	mailer           domain.Mailer
	renderer         domain.EmailRenderer
	logger           *slog.Logger
}

// NewNotificationService creates a NotificationService that records a
// notification and emails every user whose saved city matches a new event.
func NewNotificationService(notificationRepo domain.NotificationRepository, userRepo domain.UserRepository, mailer domain.Mailer, renderer domain.EmailRenderer, logger *slog.Logger) domain.NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		mailer:           mailer,
		renderer:         renderer,
		logger:           logger,
	}
}

func (s *notificationService) NotifyNewEvents(ctx context.Context, events []*domain.Event) error {
	var failed int
	for _, event := range events {
		if event.City == nil {
			continue
		}
		users, err := s.userRepo.ListByCity(ctx, *event.City)
		if err != nil {
			return fmt.Errorf("list users for city %q: %w", *event.City, err)
		}
		for _, user := range users {
			if err := s.notifyUser(ctx, user, event); err != nil {
				s.logger.WarnContext(ctx, "notification failed",
					"email", user.Email, "event_id", event.ID, "err", err)
				failed++
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d notifications failed", failed)
	}
	return nil
}

func (s *notificationService) ListNotifications(ctx context.Context, email string) ([]*domain.Notification, error) {
	notifications, err := s.notificationRepo.ListByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}
	return notifications, nil
}

func (s *notificationService) notifyUser(ctx context.Context, user *domain.User, event *domain.Event) error {
	n := &domain.Notification{
		UserEmail: user.Email,
		EventID:   event.ID,
		CreatedAt: time.Now(),
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}

	data := &domain.EventAlertEmailData{
		Name:       user.Name,
		EventTitle: event.Title,
		EventCity:  *event.City,
	}
	if event.StartDate != nil {
		data.EventDate = event.StartDate.String()
	}
	if event.RegistrationLink != nil {
		data.Link = *event.RegistrationLink
	}
	html, text, err := s.renderer.RenderEventAlert(data)
	if err != nil {
		return fmt.Errorf("render alert email: %w", err)
	}
	subject := fmt.Sprintf("New event in %s: %s", data.EventCity, event.Title)
	if err := s.mailer.Send(user.Email, subject, html, text); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}
