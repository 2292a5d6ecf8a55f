package handlers

import (
	"net/http"

	"mindease/models"
	"mindease/services/notification"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Notifications notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: svc}
}

func (h *NotificationHandler) respondFeed(c *gin.Context, feed *models.NotificationFeed, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// Feed handles GET /api/notifications.
func (h *NotificationHandler) Feed(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	feed, err := h.Notifications.Feed(c.Request.Context(), sess)
	h.respondFeed(c, feed, err)
}

// MarkRead handles POST /api/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	feed, err := h.Notifications.MarkRead(c.Request.Context(), sess, models.ID(c.Param("id")))
	h.respondFeed(c, feed, err)
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	feed, err := h.Notifications.MarkAllRead(c.Request.Context(), sess)
	h.respondFeed(c, feed, err)
}
