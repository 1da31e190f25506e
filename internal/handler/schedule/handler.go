package schedule

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/drfrankproulx-cmd/OProom/internal/middleware"
	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/internal/service/schedule"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
	"github.com/drfrankproulx-cmd/OProom/pkg/httputil"
)

type Handler struct {
	service schedule.ScheduleServicer
}

func NewHandler(service schedule.ScheduleServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	schedules := r.Group("/schedules")
	{
		schedules.POST("", h.CreateSchedule)
		schedules.GET("", h.ListSchedules)
		schedules.PUT("/:id", h.UpdateSchedule)
		schedules.DELETE("/:id", h.DeleteSchedule)
	}
}

func (h *Handler) CreateSchedule(c *gin.Context) {
	var req model.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	s, err := h.service.Create(c.Request.Context(), middleware.UserEmail(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, s)
}

// ListSchedules returns every schedule unless ?archived= narrows it.
func (h *Handler) ListSchedules(c *gin.Context) {
	filter := repository.ScheduleFilter{PatientMRN: c.Query("patient_mrn")}
	if raw := c.Query("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.RespondWithError(c, errors.InvalidArgument("archived must be true or false"))
			return
		}
		filter.Archived = &archived
	}

	schedules, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, schedules)
}

func (h *Handler) UpdateSchedule(c *gin.Context) {
	var req model.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	if err := h.service.Update(c.Request.Context(), c.Param("id"), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Schedule updated successfully", nil)
}

func (h *Handler) DeleteSchedule(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Schedule deleted successfully", nil)
}
