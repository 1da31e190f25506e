package patient

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/drfrankproulx-cmd/OProom/internal/middleware"
	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/service/patient"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
	"github.com/drfrankproulx-cmd/OProom/pkg/httputil"
)

type Handler struct {
	service patient.PatientServicer
}

func NewHandler(service patient.PatientServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.POST("/auto-archive", h.AutoArchive)
		patients.GET("/archived", h.ListArchived)
		patients.GET("/archived/:mrn", h.GetArchived)

		patients.GET("/:mrn", h.GetPatient)
		patients.PUT("/:mrn", h.UpdatePatient)
		patients.DELETE("/:mrn", h.DeletePatient)

		patients.POST("/:mrn/comments", h.AddComment)
		patients.PATCH("/:mrn/checklist", h.UpdateChecklist)

		patients.POST("/:mrn/send-to-or", h.SendToOR)
		patients.POST("/:mrn/mark-complete", h.MarkComplete)
		patients.POST("/:mrn/archive", h.Archive)
		patients.POST("/:mrn/restore", h.Restore)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), middleware.UserEmail(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, p)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("mrn"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	p, err := h.service.Update(c.Request.Context(), middleware.UserEmail(c), c.Param("mrn"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Patient updated successfully", p)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("mrn")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Patient deleted successfully", nil)
}

func (h *Handler) AddComment(c *gin.Context) {
	var req model.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), middleware.UserEmail(c), c.Param("mrn"), req.CommentText)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Comment added successfully", comment)
}

// UpdateChecklist accepts checklist_item and checked from the query string or a JSON body.
func (h *Handler) UpdateChecklist(c *gin.Context) {
	var req model.ChecklistUpdateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	if req.ChecklistItem == "" || req.Checked == nil {
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				httputil.RespondWithBindError(c, err)
				return
			}
		}
	}
	if req.ChecklistItem == "" || req.Checked == nil {
		httputil.RespondWithError(c, errors.Unprocessable("checklist_item and checked are required", nil))
		return
	}

	resp, err := h.service.UpdateChecklistItem(c.Request.Context(), middleware.UserEmail(c), c.Param("mrn"), req.ChecklistItem, *req.Checked)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, resp.Message, resp)
}

func (h *Handler) SendToOR(c *gin.Context) {
	resp, err := h.service.TransitionToOR(c.Request.Context(), middleware.UserEmail(c), c.Param("mrn"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, resp.Message, resp)
}

func (h *Handler) MarkComplete(c *gin.Context) {
	resp, err := h.service.MarkComplete(c.Request.Context(), middleware.UserEmail(c), c.Param("mrn"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, resp.Message, resp)
}

func (h *Handler) Archive(c *gin.Context) {
	resp, err := h.service.Archive(c.Request.Context(), middleware.UserEmail(c), c.Param("mrn"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, resp.Message, resp)
}

func (h *Handler) Restore(c *gin.Context) {
	resp, err := h.service.Restore(c.Request.Context(), middleware.UserEmail(c), c.Param("mrn"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, resp.Message, resp)
}

func (h *Handler) ListArchived(c *gin.Context) {
	archived, err := h.service.ListArchived(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, archived)
}

func (h *Handler) GetArchived(c *gin.Context) {
	p, err := h.service.GetArchived(c.Request.Context(), c.Param("mrn"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

// AutoArchive runs one sweep. delay_hours defaults to the configured delay.
func (h *Handler) AutoArchive(c *gin.Context) {
	delay := h.service.DelayHours()
	if raw := c.Query("delay_hours"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondWithError(c, errors.InvalidArgument("delay_hours must be an integer"))
			return
		}
		delay = v
	}

	count, err := h.service.AutoArchiveSweep(c.Request.Context(), delay)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Auto-archive completed", &model.SweepResponse{
		Message:       "Auto-archive completed",
		ArchivedCount: count,
		DelayHours:    delay,
	})
}
