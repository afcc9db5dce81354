package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusRead    = "read"
	statusAllRead = "all_read"
	statusDeleted = "deleted"
	statusCleared = "cleared"

	errListNotifications = "failed to load notifications"
	errMarkRead          = "failed to mark notification read"
	errMarkAllRead       = "failed to mark notifications read"
	errDeleteOne         = "failed to delete notification"
	errClearAll          = "failed to clear notifications"
	errMissingID         = "missing notification id"
)

// @Summary      List notifications
// @Description  Capped alert list newest-first plus the derived summary (count, unread badge, latest condition)
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/notifications [get]
// @Security     BearerAuth
func (h *Handler) listNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.services.Notifications.List(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListNotifications, "notifications_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Notification summary
// @Description  Badge counts only, for surfaces that don't render the list
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/notifications/summary [get]
// @Security     BearerAuth
func (h *Handler) notificationSummary(c *gin.Context) {
	ctx := c.Request.Context()
	summary, err := h.services.Notifications.Summary(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListNotifications, "notifications_summary_failed", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary      Mark notification read
// @Tags         notifications
// @Produce      json
// @Param        id  path  string  true  "Notification id"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/notifications/{id}/read [post]
// @Security     BearerAuth
func (h *Handler) markNotificationRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingID})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Notifications.MarkRead(ctx, id); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errMarkRead, "notification_mark_read_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusRead})
}

// @Summary      Mark all notifications read
// @Description  Open-popover read receipt: every unread record becomes read
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/notifications/read-all [post]
// @Security     BearerAuth
func (h *Handler) markAllNotificationsRead(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Notifications.MarkAllRead(ctx); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errMarkAllRead, "notifications_mark_all_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusAllRead})
}

// @Summary      Delete notification
// @Tags         notifications
// @Produce      json
// @Param        id  path  string  true  "Notification id"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/notifications/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteNotification(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingID})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Notifications.Delete(ctx, id); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errDeleteOne, "notification_delete_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusDeleted})
}

// @Summary      Clear notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/notifications [delete]
// @Security     BearerAuth
func (h *Handler) clearNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Notifications.ClearAll(ctx); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errClearAll, "notifications_clear_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusCleared})
}
