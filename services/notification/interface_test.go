package notification

import (
	"context"
	"testing"

	"mindease/models"
	"mindease/services/backend"
	"mindease/services/backend/backendmock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var sess = &models.SessionContext{ID: "s1", UserID: "7", Role: models.RoleUser}

func inbox() []models.Notification {
	return []models.Notification{
		{ID: "1", Title: "Booked", Time: "2025-01-03T10:00:00Z", Read: true},
		{ID: "2", Title: "Reminder", Time: "2025-01-05T08:00:00Z"},
		{ID: "3", Title: "Odd", Time: "yesterday"},
		{ID: "4", Title: "Cancelled", Time: "2025-01-04T09:30:00Z"},
	}
}

func TestFeedOrdersAndCounts(t *testing.T) {
	api := &backendmock.API{}
	api.On("GetNotifications", mock.Anything, sess).Return(models.Ok(inbox(), "", 200))
	svc, err := NewDefaultNotificationService(api, nil)
	require.NoError(t, err)

	feed, err := svc.Feed(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, 3, feed.Unread)
	ids := []models.ID{}
	for _, n := range feed.Items {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []models.ID{"2", "4", "1", "3"}, ids)
}

func TestMarkReadRefreshesFeed(t *testing.T) {
	api := &backendmock.API{}
	api.On("MarkNotificationRead", mock.Anything, sess, models.ID("2")).Return(backendmock.OK(""))
	api.On("GetNotifications", mock.Anything, sess).Return(models.Ok([]models.Notification{{ID: "2", Read: true}}, "", 200))
	svc, _ := NewDefaultNotificationService(api, nil)

	feed, err := svc.MarkRead(context.Background(), sess, "2")
	require.NoError(t, err)
	assert.Zero(t, feed.Unread)
	api.AssertExpectations(t)
}

func TestMarkAllReadFailure(t *testing.T) {
	api := &backendmock.API{}
	api.On("MarkAllNotificationsRead", mock.Anything, sess).Return(backendmock.Failed("Server error", 500))
	svc, _ := NewDefaultNotificationService(api, nil)

	_, err := svc.MarkAllRead(context.Background(), sess)
	var failure *backend.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 500, failure.Status)
}

func TestNilBackendRejected(t *testing.T) {
	_, err := NewDefaultNotificationService(nil, nil)
	assert.Error(t, err)
}
