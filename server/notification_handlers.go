package server

import (
	"net/http"

	"wagerhub/application"
	"wagerhub/domain/entities"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	var notifications []*entities.Notification
	err := h.run(c, func(s *application.Services) error {
		var err error
		notifications, err = s.Notifications.List(c.Request.Context(), currentUserID(c), queryBool(c, "unread"), queryInt(c, "limit", defaultListLimit))
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to list notifications")
		return
	}
	respondOK(c, http.StatusOK, "Notifications retrieved", notifications)
}

func (h *Handler) UnreadNotificationCount(c *gin.Context) {
	var count int64
	err := h.run(c, func(s *application.Services) error {
		var err error
		count, err = s.Notifications.CountUnread(c.Request.Context(), currentUserID(c))
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to count notifications")
		return
	}
	respondOK(c, http.StatusOK, "Unread notifications counted", gin.H{"unread": count})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := h.run(c, func(s *application.Services) error {
		return s.Notifications.MarkRead(c.Request.Context(), currentUserID(c), id)
	})
	if err != nil {
		respondError(c, err, "Failed to mark notification read")
		return
	}
	respondOK(c, http.StatusOK, "Notification marked read", nil)
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	var marked int64
	err := h.run(c, func(s *application.Services) error {
		var err error
		marked, err = s.Notifications.MarkAllRead(c.Request.Context(), currentUserID(c))
		return err
	})
	if err != nil {
		respondError(c, err, "Failed to mark notifications read")
		return
	}
	respondOK(c, http.StatusOK, "Notifications marked read", gin.H{"marked": marked})
}
