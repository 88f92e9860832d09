package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
	"github.com/tonikampos/kampos-xestion-api/internal/service"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
	"github.com/tonikampos/kampos-xestion-api/pkg/response"
)

// AuthHandler exposes registration, login and profile endpoints.
type AuthHandler struct {
	auth       *service.AuthService
	professors *service.ProfessorService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService, professors *service.ProfessorService) *AuthHandler {
	return &AuthHandler{auth: auth, professors: professors}
}

// Register godoc
// @Summary Register a professor account
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	professor, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, professor)
}

// Login godoc
// @Summary Authenticate and issue a token
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Me godoc
// @Summary Get the authenticated professor profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	professor, err := h.professors.Profile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}

// UpdateMe godoc
// @Summary Update the authenticated professor profile
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.ProfessorProfileUpdate true "Profile fields"
// @Success 200 {object} response.Envelope
// @Router /auth/me [put]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	var req service.ProfessorProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	professor, err := h.professors.UpdateProfile(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}
