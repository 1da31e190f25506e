package conference

import (
	"github.com/gin-gonic/gin"

	"github.com/drfrankproulx-cmd/OProom/internal/middleware"
	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/service/conference"
	"github.com/drfrankproulx-cmd/OProom/pkg/httputil"
)

type Handler struct {
	service conference.ConferenceServicer
}

func NewHandler(service conference.ConferenceServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	conferences := r.Group("/conferences")
	{
		conferences.POST("", h.CreateConference)
		conferences.GET("", h.ListConferences)
		conferences.PUT("/:id", h.UpdateConference)
		conferences.DELETE("/:id", h.DeleteConference)
	}
}

func (h *Handler) CreateConference(c *gin.Context) {
	var req model.ConferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	conf, err := h.service.Create(c.Request.Context(), middleware.UserEmail(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, conf)
}

func (h *Handler) ListConferences(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, list)
}

func (h *Handler) UpdateConference(c *gin.Context) {
	var req model.ConferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	if err := h.service.Update(c.Request.Context(), c.Param("id"), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Conference updated successfully", nil)
}

func (h *Handler) DeleteConference(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Conference deleted successfully", nil)
}
