package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fet-timetable-api/internal/dto"
	"github.com/noah-isme/fet-timetable-api/internal/models"
	appErrors "github.com/noah-isme/fet-timetable-api/pkg/errors"
	"github.com/noah-isme/fet-timetable-api/pkg/response"
)

type renameService interface {
	RenameList(ctx context.Context, sessionID string, kind models.RenameKind) []models.RenameEntry
	Mappings(ctx context.Context, sessionID string) models.Mappings
	Rename(ctx context.Context, sessionID string, kind models.RenameKind, req dto.RenameRequest) (models.Mappings, error)
}

// RenameHandler manages teacher and room display names.
type RenameHandler struct {
	service renameService
}

// NewRenameHandler constructs the handler.
func NewRenameHandler(service renameService) *RenameHandler {
	return &RenameHandler{service: service}
}

// ListTeachers godoc
// @Summary Teacher rename configuration
// @Tags Rename
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rename/teachers/list [get]
func (h *RenameHandler) ListTeachers(c *gin.Context) {
	h.list(c, models.RenameKindTeacher)
}

// ListRooms godoc
// @Summary Room rename configuration
// @Tags Rename
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rename/rooms/list [get]
func (h *RenameHandler) ListRooms(c *gin.Context) {
	h.list(c, models.RenameKindRoom)
}

func (h *RenameHandler) list(c *gin.Context, kind models.RenameKind) {
	if sid, ok := sessionFromContext(c); ok {
		response.OK(c, h.service.RenameList(c.Request.Context(), sid, kind))
	}
}

// Mappings godoc
// @Summary Current rename tables
// @Tags Rename
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rename/mappings [get]
func (h *RenameHandler) Mappings(c *gin.Context) {
	if sid, ok := sessionFromContext(c); ok {
		response.OK(c, h.service.Mappings(c.Request.Context(), sid))
	}
}

// RenameTeacher godoc
// @Summary Set or clear a teacher display name
// @Tags Rename
// @Accept json
// @Produce json
// @Param payload body dto.RenameRequest true "Rename"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /rename/teacher [post]
func (h *RenameHandler) RenameTeacher(c *gin.Context) {
	h.rename(c, models.RenameKindTeacher)
}

// RenameRoom godoc
// @Summary Set or clear a room display name
// @Tags Rename
// @Accept json
// @Produce json
// @Param payload body dto.RenameRequest true "Rename"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /rename/room [post]
func (h *RenameHandler) RenameRoom(c *gin.Context) {
	h.rename(c, models.RenameKindRoom)
}

func (h *RenameHandler) rename(c *gin.Context, kind models.RenameKind) {
	sid, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid rename payload"))
		return
	}
	mappings, err := h.service.Rename(c.Request.Context(), sid, kind, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.RenameResponse{Status: "ok", Mappings: mappings})
}
