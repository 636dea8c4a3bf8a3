package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ngo-connect-api/internal/domain"
	"github.com/samber/lo"
)

type Service interface {
	ListForUser(ctx context.Context, userID string) (*domain.NotificationList, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationStore interface {
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
}

type service struct {
	notifications notificationStore
}

func NewService(notifications notificationStore) Service {
	return &service{notifications: notifications}
}

func (s *service) ListForUser(ctx context.Context, userID string) (*domain.NotificationList, error) {
	items, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread := lo.CountBy(items, func(n domain.Notification) bool { return !n.Read })
	return &domain.NotificationList{Notifications: items, UnreadCount: unread}, nil
}

func (s *service) MarkRead(ctx context.Context, notificationID, userID string) error {
	n, err := s.notifications.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	if n.Read {
		return nil
	}
	return s.notifications.MarkAsRead(ctx, notificationID)
}

func (s *service) MarkAllRead(ctx context.Context, userID string) error {
	items, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, n := range items {
		if n.Read {
			continue
		}
		if err := s.notifications.MarkAsRead(ctx, n.NotificationID); err != nil {
			slog.Warn("failed to mark notification read", "notification_id", n.NotificationID, "err", err)
		}
	}
	return nil
}
