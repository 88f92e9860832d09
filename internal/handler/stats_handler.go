package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tonikampos/kampos-xestion-api/internal/service"
	"github.com/tonikampos/kampos-xestion-api/pkg/response"
)

// StatsHandler exposes statistics endpoints.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Overview godoc
// @Summary Professor-wide statistics overview
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /stats/overview [get]
func (h *StatsHandler) Overview(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	overview, err := h.stats.Overview(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// Subject godoc
// @Summary Statistics of one subject
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /stats/subjects/{subjectId} [get]
func (h *StatsHandler) Subject(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	stats, err := h.stats.SubjectStats(c.Request.Context(), id, c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
