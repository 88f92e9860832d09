package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tonikampos/kampos-xestion-api/internal/middleware"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
	"github.com/tonikampos/kampos-xestion-api/pkg/response"
)

// professorID returns the authenticated professor ID or writes a 401 and
// reports false.
func professorID(c *gin.Context) (string, bool) {
	claims, ok := middleware.Claims(c)
	if !ok || claims.ProfessorID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, ""))
		return "", false
	}
	return claims.ProfessorID, true
}
