package repository

import (
	"context"

	"github.com/jaekwang-park/vici/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, n model.Notification) (model.Notification, error)
	List(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}
