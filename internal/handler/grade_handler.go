package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
	"github.com/tonikampos/kampos-xestion-api/internal/service"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
	"github.com/tonikampos/kampos-xestion-api/pkg/response"
)

// GradeHandler exposes grade entry endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// saveGradesRequest carries the entered scores of one grade record.
type saveGradesRequest struct {
	Evaluations models.EvaluationGrades `json:"evaluations" binding:"required"`
}

// Init godoc
// @Summary Initialize grade records for all enrolled students of a subject
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope "Subject has no evaluation configuration"
// @Router /grades/subjects/{subjectId}/init [post]
func (h *GradeHandler) Init(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	result, err := h.grades.InitGrades(c.Request.Context(), id, c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListBySubject godoc
// @Summary List grade records of a subject
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /grades/subjects/{subjectId} [get]
func (h *GradeHandler) ListBySubject(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	grades, err := h.grades.GetBySubject(c.Request.Context(), id, c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// ListByStudent godoc
// @Summary List a student's grade records across subjects
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /grades/students/{studentId} [get]
func (h *GradeHandler) ListByStudent(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	grades, err := h.grades.ListByStudent(c.Request.Context(), id, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Get godoc
// @Summary Get one grade record
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /grades/students/{studentId}/subjects/{subjectId} [get]
func (h *GradeHandler) Get(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	grade, err := h.grades.GetByStudentAndSubject(c.Request.Context(), id, c.Param("studentId"), c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Save godoc
// @Summary Save the entered scores of one grade record
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param subjectId path string true "Subject ID"
// @Param payload body saveGradesRequest true "Entered scores"
// @Success 200 {object} response.Envelope
// @Router /grades/students/{studentId}/subjects/{subjectId} [put]
func (h *GradeHandler) Save(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	var req saveGradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	grade, err := h.grades.SaveGrades(c.Request.Context(), id, c.Param("studentId"), c.Param("subjectId"), req.Evaluations)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}
