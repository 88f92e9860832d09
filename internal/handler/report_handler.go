package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
	"github.com/tonikampos/kampos-xestion-api/internal/service"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
	"github.com/tonikampos/kampos-xestion-api/pkg/response"
)

// ReportHandler exposes asynchronous report endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// createReportRequest queues one report job.
type createReportRequest struct {
	Type   models.ReportType      `json:"type" binding:"required"`
	Params models.ReportJobParams `json:"params"`
}

// Create godoc
// @Summary Queue a report job
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body createReportRequest true "Report request"
// @Success 202 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	job, err := h.reports.CreateJob(c.Request.Context(), id, req.Type, req.Params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Get godoc
// @Summary Get a report job's status
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	job, err := h.reports.GetJob(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished report via its signed token
// @Tags Reports
// @Produce application/octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /reports/download/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	job, relPath, err := h.reports.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("%s_%s", job.Type, job.ID)
	switch job.Params.Format {
	case models.ReportFormatCSV:
		c.Header("Content-Type", "text/csv")
		filename += ".csv"
	case models.ReportFormatZip:
		c.Header("Content-Type", "application/zip")
		filename += ".zip"
	default:
		c.Header("Content-Type", "application/pdf")
		filename += ".pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := h.reports.Storage().CopyTo(c.Writer, relPath); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stream report"))
	}
}
