package usage

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/drfrankproulx-cmd/OProom/internal/middleware"
	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/service/usage"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
	"github.com/drfrankproulx-cmd/OProom/pkg/httputil"
)

// Ranker serves the per-user frequency lists.
type Ranker interface {
	FrequentCPTCodes(ctx context.Context, user string, limit int) ([]model.FrequentCPTCode, error)
	FrequentDiagnoses(ctx context.Context, user string, limit int) ([]model.FrequentDiagnosis, error)
}

type Handler struct {
	service Ranker
}

func NewHandler(service Ranker) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	u := r.Group("/usage")
	{
		u.GET("/frequently-used-cpt", h.FrequentCPT)
		u.GET("/frequently-used-diagnoses", h.FrequentDiagnoses)
	}
}

func limit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return usage.DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidArgument("limit must be an integer")
	}
	return usage.ClampLimit(n), nil
}

func (h *Handler) FrequentCPT(c *gin.Context) {
	n, err := limit(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	codes, err := h.service.FrequentCPTCodes(c.Request.Context(), middleware.UserEmail(c), n)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"cpt_codes": codes})
}

func (h *Handler) FrequentDiagnoses(c *gin.Context) {
	n, err := limit(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	diagnoses, err := h.service.FrequentDiagnoses(c.Request.Context(), middleware.UserEmail(c), n)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"diagnoses": diagnoses})
}
