package notification

import (
	"context"
	"fmt"
	"sort"
	"time"

	"mindease/models"
	"mindease/services/backend"

	"go.uber.org/zap"
)

// NotificationService reads and acknowledges the backend notification inbox.
type NotificationService interface {
	Feed(ctx context.Context, sess *models.SessionContext) (*models.NotificationFeed, error)
	MarkRead(ctx context.Context, sess *models.SessionContext, id models.ID) (*models.NotificationFeed, error)
	MarkAllRead(ctx context.Context, sess *models.SessionContext) (*models.NotificationFeed, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	api    backend.API
	logger *zap.Logger
}

func NewDefaultNotificationService(api backend.API, logger *zap.Logger) (*DefaultNotificationService, error) {
	if api == nil {
		return nil, fmt.Errorf("notification service initialization error: backend client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{api: api, logger: logger}, nil
}

// Feed lists notifications newest first with the unread count.
func (s *DefaultNotificationService) Feed(ctx context.Context, sess *models.SessionContext) (*models.NotificationFeed, error) {
	res := s.api.GetNotifications(ctx, sess)
	if err := backend.Err(res); err != nil {
		return nil, err
	}
	items := res.Data
	if items == nil {
		items = []models.Notification{}
	}
	SortNewestFirst(items)
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	return &models.NotificationFeed{Items: items, Unread: unread}, nil
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, sess *models.SessionContext, id models.ID) (*models.NotificationFeed, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("notification id is required")
	}
	if err := backend.Err(s.api.MarkNotificationRead(ctx, sess, id)); err != nil {
		return nil, err
	}
	return s.Feed(ctx, sess)
}

func (s *DefaultNotificationService) MarkAllRead(ctx context.Context, sess *models.SessionContext) (*models.NotificationFeed, error) {
	if err := backend.Err(s.api.MarkAllNotificationsRead(ctx, sess)); err != nil {
		return nil, err
	}
	s.logger.Debug("notifications marked read", zap.String("user", sess.UserID))
	return s.Feed(ctx, sess)
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"}

func parseTime(v string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortNewestFirst orders by timestamp descending. Items with unreadable
// timestamps keep their relative order after the dated ones.
func SortNewestFirst(items []models.Notification) {
	sort.SliceStable(items, func(i, j int) bool {
		a, okA := parseTime(items[i].Time)
		b, okB := parseTime(items[j].Time)
		if !okA || !okB {
			return okA && !okB
		}
		return a.After(b)
	})
}
