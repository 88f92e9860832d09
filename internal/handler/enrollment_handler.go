package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
	"github.com/tonikampos/kampos-xestion-api/internal/service"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
	"github.com/tonikampos/kampos-xestion-api/pkg/response"
)

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Filter by student"
// @Param subjectId query string false "Filter by subject"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	var filter models.EnrollmentFilter
	filter.StudentID = c.Query("studentId")
	filter.SubjectID = c.Query("subjectId")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	details, total, err := h.enrollments.List(c.Request.Context(), id, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, details, pagination)
}

// Create godoc
// @Summary Enroll a student in a subject
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.EnrollmentInput true "Enrollment"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Student already enrolled"
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	var input service.EnrollmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	enrollment, err := h.enrollments.Create(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Delete godoc
// @Summary Delete an enrollment and its grade record
// @Tags Enrollments
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Success 204
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	if err := h.enrollments.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
