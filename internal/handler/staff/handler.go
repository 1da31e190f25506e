package staff

import (
	"github.com/gin-gonic/gin"

	"github.com/drfrankproulx-cmd/OProom/internal/middleware"
	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/service/staff"
	"github.com/drfrankproulx-cmd/OProom/pkg/httputil"
)

type Handler struct {
	service staff.StaffServicer
}

func NewHandler(service staff.StaffServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	residents := r.Group("/residents")
	{
		residents.POST("", h.CreateResident)
		residents.GET("", h.listResidents(false))
		residents.GET("/active", h.listResidents(true))
		residents.PUT("/:id", h.UpdateResident)
		residents.DELETE("/:id", h.DeleteResident)
	}

	attendings := r.Group("/attendings")
	{
		attendings.POST("", h.CreateAttending)
		attendings.GET("", h.listAttendings(false))
		attendings.GET("/active", h.listAttendings(true))
		attendings.PUT("/:id", h.UpdateAttending)
		attendings.DELETE("/:id", h.DeleteAttending)
	}
}

func filter(c *gin.Context, activeOnly bool) model.StaffFilter {
	return model.StaffFilter{Hospital: c.Query("hospital"), ActiveOnly: activeOnly}
}

func (h *Handler) CreateResident(c *gin.Context) {
	var req model.ResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	res, err := h.service.CreateResident(c.Request.Context(), middleware.UserEmail(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, res)
}

func (h *Handler) listResidents(activeOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		residents, err := h.service.ListResidents(c.Request.Context(), filter(c, activeOnly))
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, residents)
	}
}

func (h *Handler) UpdateResident(c *gin.Context) {
	var req model.ResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	if err := h.service.UpdateResident(c.Request.Context(), c.Param("id"), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Resident updated successfully", nil)
}

func (h *Handler) DeleteResident(c *gin.Context) {
	if err := h.service.DeleteResident(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Resident deleted successfully", nil)
}

func (h *Handler) CreateAttending(c *gin.Context) {
	var req model.AttendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	a, err := h.service.CreateAttending(c.Request.Context(), middleware.UserEmail(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, a)
}

func (h *Handler) listAttendings(activeOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		attendings, err := h.service.ListAttendings(c.Request.Context(), filter(c, activeOnly))
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, attendings)
	}
}

func (h *Handler) UpdateAttending(c *gin.Context) {
	var req model.AttendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	if err := h.service.UpdateAttending(c.Request.Context(), c.Param("id"), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Attending updated successfully", nil)
}

func (h *Handler) DeleteAttending(c *gin.Context) {
	if err := h.service.DeleteAttending(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Attending deleted successfully", nil)
}
