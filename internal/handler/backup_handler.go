package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
	"github.com/tonikampos/kampos-xestion-api/internal/service"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
	"github.com/tonikampos/kampos-xestion-api/pkg/response"
)

// BackupHandler exposes snapshot export/restore and backend migration.
type BackupHandler struct {
	backups   *service.BackupService
	migration *service.MigrationService
}

// NewBackupHandler constructs BackupHandler. The migration service may be
// nil when only one backend is configured.
func NewBackupHandler(backups *service.BackupService, migration *service.MigrationService) *BackupHandler {
	return &BackupHandler{backups: backups, migration: migration}
}

// Export godoc
// @Summary Export the professor's full dataset as a JSON snapshot
// @Tags Backup
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Snapshot
// @Router /backup/export [get]
func (h *BackupHandler) Export(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	snapshot, err := h.backups.Export(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="kampos-xestion-backup.json"`)
	c.JSON(http.StatusOK, snapshot)
}

// Restore godoc
// @Summary Replace the professor's dataset with a snapshot
// @Tags Backup
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.Snapshot true "Snapshot document"
// @Success 200 {object} response.Envelope
// @Router /backup/restore [post]
func (h *BackupHandler) Restore(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	var snapshot models.Snapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid snapshot document"))
		return
	}
	if err := h.backups.Restore(c.Request.Context(), id, snapshot); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"restored": true}, nil)
}

// Migrate godoc
// @Summary Copy the professor's data from the file backend to PostgreSQL
// @Tags Backup
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /migration/run [post]
func (h *BackupHandler) Migrate(c *gin.Context) {
	id, ok := professorID(c)
	if !ok {
		return
	}
	if h.migration == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "migration requires both backends configured"))
		return
	}
	result, err := h.migration.Run(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
