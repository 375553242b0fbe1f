package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fet-timetable-api/internal/dto"
	"github.com/noah-isme/fet-timetable-api/internal/models"
	"github.com/noah-isme/fet-timetable-api/internal/service"
	appErrors "github.com/noah-isme/fet-timetable-api/pkg/errors"
	"github.com/noah-isme/fet-timetable-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, sessionID string, req service.ExportRequest) (*service.Rendered, error)
}

type batchService interface {
	Create(ctx context.Context, sessionID string, req dto.BatchExportRequest) (*models.BatchJob, error)
	Get(sessionID, id string) (*models.BatchJob, error)
	Download(token string) (*os.File, string, error)
}

// ExportHandler renders documents and manages batch archives.
type ExportHandler struct {
	exports exportService
	batches batchService
}

// NewExportHandler constructs the handler. batches may be nil when batch
// exports are disabled.
func NewExportHandler(exports exportService, batches batchService) *ExportHandler {
	return &ExportHandler{exports: exports, batches: batches}
}

// Teacher godoc
// @Summary Export a teacher timetable
// @Tags Export
// @Produce application/pdf,text/csv,text/calendar
// @Param format path string true "pdf, csv, xlsx or ics"
// @Param name path string true "Teacher"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /export/{format}/teacher/{name} [get]
func (h *ExportHandler) Teacher(c *gin.Context) {
	h.render(c, service.ExportRequest{Target: models.ExportTargetTeacher, Name: c.Param("name")})
}

// Subgroup godoc
// @Summary Export a class timetable
// @Tags Export
// @Produce application/pdf,text/csv,text/calendar
// @Param format path string true "pdf, csv, xlsx or ics"
// @Param name path string true "Class or subgroup"
// @Param labelMode query string false "diff or always"
// @Param labelSubjects query string false "Comma separated subjects"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /export/{format}/subgroup/{name} [get]
func (h *ExportHandler) Subgroup(c *gin.Context) {
	var query dto.ClassViewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	h.render(c, service.ExportRequest{Target: models.ExportTargetSubgroup, Name: c.Param("name"), Class: query})
}

// Room godoc
// @Summary Export a room occupation
// @Tags Export
// @Produce application/pdf,text/csv,text/calendar
// @Param format path string true "pdf, csv, xlsx or ics"
// @Param name path string true "Room"
// @Success 200 {file} binary
// @Router /export/{format}/room/{name} [get]
func (h *ExportHandler) Room(c *gin.Context) {
	h.render(c, service.ExportRequest{Target: models.ExportTargetRoom, Name: c.Param("name")})
}

// VacantRooms godoc
// @Summary Export free rooms
// @Tags Export
// @Produce application/pdf,text/csv
// @Param format path string true "pdf, csv or xlsx"
// @Success 200 {file} binary
// @Router /export/{format}/vacant-rooms [get]
func (h *ExportHandler) VacantRooms(c *gin.Context) {
	h.render(c, service.ExportRequest{Target: models.ExportTargetVacantRooms})
}

func (h *ExportHandler) render(c *gin.Context, req service.ExportRequest) {
	sid, ok := sessionFromContext(c)
	if !ok {
		return
	}
	req.Format = models.ExportFormat(c.Param("format"))
	doc, err := h.exports.Export(c.Request.Context(), sid, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Body)
}

// CreateBatch godoc
// @Summary Queue a ZIP of every teacher or class timetable
// @Tags Export
// @Accept json
// @Produce json
// @Param payload body dto.BatchExportRequest true "Batch"
// @Success 202 {object} response.Envelope
// @Router /export/batch [post]
func (h *ExportHandler) CreateBatch(c *gin.Context) {
	if h.batches == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "batch export not configured"))
		return
	}
	sid, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.BatchExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid batch payload"))
		return
	}
	job, err := h.batches.Create(c.Request.Context(), sid, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// BatchStatus godoc
// @Summary Batch export status
// @Tags Export
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /export/batch/{id} [get]
func (h *ExportHandler) BatchStatus(c *gin.Context) {
	if h.batches == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "batch export not configured"))
		return
	}
	sid, ok := sessionFromContext(c)
	if !ok {
		return
	}
	job, err := h.batches.Get(sid, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, job)
}

// Download godoc
// @Summary Download a batch archive via signed token
// @Tags Export
// @Produce application/zip
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 410 {object} response.Envelope
// @Router /export/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	if h.batches == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "batch export not configured"))
		return
	}
	file, filename, err := h.batches.Download(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck
	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat archive"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), "application/zip", file, nil)
}
