package notification

import (
	"github.com/gin-gonic/gin"

	"github.com/drfrankproulx-cmd/OProom/internal/middleware"
	"github.com/drfrankproulx-cmd/OProom/internal/service/notification"
	"github.com/drfrankproulx-cmd/OProom/pkg/httputil"
)

type Handler struct {
	service notification.NotificationServicer
}

func NewHandler(service notification.NotificationServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes exposes the caller's own notifications only.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.GET("/unread", h.Unread)
		notifications.PATCH("/mark-all-read", h.MarkAllRead)
		notifications.PATCH("/:id/read", h.MarkRead)
		notifications.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), middleware.UserEmail(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, list)
}

func (h *Handler) Unread(c *gin.Context) {
	list, err := h.service.Unread(c.Request.Context(), middleware.UserEmail(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"count": len(list), "notifications": list})
}

func (h *Handler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(c.Request.Context(), middleware.UserEmail(c), c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Notification marked as read", nil)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	n, err := h.service.MarkAllRead(c.Request.Context(), middleware.UserEmail(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "All notifications marked as read", gin.H{"count": n})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.UserEmail(c), c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Notification deleted", nil)
}
