package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jaekwang-park/vici/internal/events"
	"github.com/jaekwang-park/vici/internal/mailer"
	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/repository"
)

const accountabilityTitle = "Accountability Check"

type NotificationService struct {
	notifications repository.NotificationRepository
	tasks         repository.TaskRepository
	gen           InsightGenerator
	mail          mailer.Mailer
	pub           publisher
	logger        *slog.Logger
}

// NewNotificationService creates a NotificationService. pub and mail may be nil.
func NewNotificationService(
	notifications repository.NotificationRepository,
	tasks repository.TaskRepository,
	gen InsightGenerator,
	pub events.Publisher,
	mail mailer.Mailer,
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	if mail == nil {
		mail = mailer.Discard{}
	}
	return &NotificationService{
		notifications: notifications,
		tasks:         tasks,
		gen:           gen,
		mail:          mail,
		pub:           newPublisher(pub, logger),
		logger:        logger,
	}
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	list, err := s.notifications.List(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.notifications.MarkRead(ctx, userID, notificationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// Notify stores n and pushes it to the user's event channel.
func (s *NotificationService) Notify(ctx context.Context, n model.Notification) (model.Notification, error) {
	saved, err := s.notifications.Create(ctx, n)
	if err != nil {
		return model.Notification{}, fmt.Errorf("failed to save notification: %w", err)
	}
	s.pub.publish(ctx, saved.UserID, model.EventNotification, saved)
	return saved, nil
}

// AccountabilityCheck generates a check-in message for the user's current
// tasks, stores it as a notification, pushes it and emails it. It returns
// the message.
func (s *NotificationService) AccountabilityCheck(ctx context.Context, userID string) (string, error) {
	tasks, err := s.tasks.List(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load tasks for accountability check: %w", err)
	}

	msg := s.gen.AccountabilityMessage(ctx, tasks)

	saved, err := s.notifications.Create(ctx, model.Notification{
		UserID:           userID,
		Title:            accountabilityTitle,
		Message:          msg,
		NotificationType: model.NotificationAccountability,
	})
	if err != nil {
		return "", fmt.Errorf("failed to save accountability notification: %w", err)
	}

	s.pub.publish(ctx, userID, model.EventAccountabilityCheck, saved)

	if err := s.mail.Send(ctx, mailer.Message{Subject: accountabilityTitle, Text: msg}); err != nil {
		s.logger.WarnContext(ctx, "failed to email accountability check", "user_id", userID, "error", err)
	}

	return msg, nil
}
