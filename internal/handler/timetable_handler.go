package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fet-timetable-api/internal/dto"
	"github.com/noah-isme/fet-timetable-api/internal/importer"
	"github.com/noah-isme/fet-timetable-api/internal/models"
	"github.com/noah-isme/fet-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/fet-timetable-api/pkg/errors"
	"github.com/noah-isme/fet-timetable-api/pkg/response"
)

// uploadFields maps multipart field names to FET documents.
var uploadFields = []struct {
	field string
	doc   importer.Document
}{
	{"teachersXml", importer.DocumentTeachers},
	{"subgroupsXml", importer.DocumentSubgroups},
	{"activitiesXml", importer.DocumentActivities},
}

type timetableService interface {
	Upload(ctx context.Context, sessionID string, files map[importer.Document][]byte) (*dto.UploadResponse, error)
	TeacherView(ctx context.Context, sessionID, name string) []models.DerivedSlot
	ClassView(ctx context.Context, sessionID, name string, query dto.ClassViewQuery) ([]models.DerivedSlot, error)
	RoomView(ctx context.Context, sessionID, name string) []models.DerivedSlot
	VacantRooms(ctx context.Context, sessionID string) []models.DerivedSlot
	Diagnostics(ctx context.Context, sessionID string) timetable.VacancyDiagnostics
	TeachersBySubject(ctx context.Context, sessionID string) map[string][]string
	Classes(ctx context.Context, sessionID string) []string
	SubgroupsForClass(ctx context.Context, sessionID, name string) []string
	Rooms(ctx context.Context, sessionID string) []string
	Sessions() dto.SessionsResponse
}

// TimetableHandler serves uploads, catalogs and derived views.
type TimetableHandler struct {
	service        timetableService
	maxUploadBytes int64
}

// NewTimetableHandler constructs the handler. maxUploadBytes bounds each
// document; the request body may carry all three.
func NewTimetableHandler(service timetableService, maxUploadBytes int64) *TimetableHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 * 1024 * 1024
	}
	return &TimetableHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// Upload godoc
// @Summary Upload FET XML exports
// @Tags Timetable
// @Accept multipart/form-data
// @Produce json
// @Param teachersXml formData file false "Teachers timetable"
// @Param subgroupsXml formData file false "Subgroups timetable"
// @Param activitiesXml formData file false "Activities timetable"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /upload [post]
func (h *TimetableHandler) Upload(c *gin.Context) {
	sid, ok := sessionFromContext(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(len(uploadFields))*h.maxUploadBytes+1<<20)

	files := make(map[importer.Document][]byte, len(uploadFields))
	for _, f := range uploadFields {
		header, err := c.FormFile(f.field)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(c, appErrors.ErrPayloadTooLarge)
				return
			}
			if errors.Is(err, http.ErrMissingFile) {
				continue
			}
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid multipart upload"))
			return
		}
		if header.Size > h.maxUploadBytes {
			response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, f.field+" exceeds upload limit"))
			return
		}
		src, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read file"))
			return
		}
		files[f.doc] = data
	}

	result, err := h.service.Upload(c.Request.Context(), sid, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Teachers godoc
// @Summary Teachers grouped by subject
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TimetableHandler) Teachers(c *gin.Context) {
	if sid, ok := sessionFromContext(c); ok {
		response.OK(c, h.service.TeachersBySubject(c.Request.Context(), sid))
	}
}

// Classes godoc
// @Summary Class names
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /subgroups [get]
func (h *TimetableHandler) Classes(c *gin.Context) {
	if sid, ok := sessionFromContext(c); ok {
		response.OK(c, h.service.Classes(c.Request.Context(), sid))
	}
}

// ClassSubgroups godoc
// @Summary Subgroups of a class
// @Tags Catalog
// @Produce json
// @Param name path string true "Class name"
// @Success 200 {object} response.Envelope
// @Router /classes/{name}/subgroups [get]
func (h *TimetableHandler) ClassSubgroups(c *gin.Context) {
	if sid, ok := sessionFromContext(c); ok {
		response.OK(c, h.service.SubgroupsForClass(c.Request.Context(), sid, c.Param("name")))
	}
}

// Rooms godoc
// @Summary Room names
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms/list [get]
func (h *TimetableHandler) Rooms(c *gin.Context) {
	if sid, ok := sessionFromContext(c); ok {
		response.OK(c, h.service.Rooms(c.Request.Context(), sid))
	}
}

// TeacherView godoc
// @Summary Weekly timetable of a teacher
// @Tags Views
// @Produce json
// @Param name path string true "Original or display name"
// @Success 200 {object} response.Envelope
// @Router /timetable/teacher/{name} [get]
func (h *TimetableHandler) TeacherView(c *gin.Context) {
	if sid, ok := sessionFromContext(c); ok {
		response.OK(c, h.service.TeacherView(c.Request.Context(), sid, c.Param("name")))
	}
}

// ClassView godoc
// @Summary Weekly timetable of a class or subgroup
// @Tags Views
// @Produce json
// @Param name path string true "Class or subgroup"
// @Param labelMode query string false "diff or always"
// @Param labelSubjects query string false "Comma separated subjects"
// @Success 200 {object} response.Envelope
// @Router /timetable/subgroup/{name} [get]
func (h *TimetableHandler) ClassView(c *gin.Context) {
	sid, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var query dto.ClassViewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	slots, err := h.service.ClassView(c.Request.Context(), sid, c.Param("name"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, slots)
}

// RoomView godoc
// @Summary Weekly occupation of a room
// @Tags Views
// @Produce json
// @Param name path string true "Room"
// @Success 200 {object} response.Envelope
// @Router /timetable/room/{name} [get]
func (h *TimetableHandler) RoomView(c *gin.Context) {
	if sid, ok := sessionFromContext(c); ok {
		response.OK(c, h.service.RoomView(c.Request.Context(), sid, c.Param("name")))
	}
}

// VacantRooms godoc
// @Summary Free rooms per day and hour
// @Tags Views
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms/vacant [get]
func (h *TimetableHandler) VacantRooms(c *gin.Context) {
	if sid, ok := sessionFromContext(c); ok {
		response.OK(c, h.service.VacantRooms(c.Request.Context(), sid))
	}
}

// Diagnostics godoc
// @Summary Vacant room inputs
// @Tags Views
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms/vacant/diagnostics [get]
func (h *TimetableHandler) Diagnostics(c *gin.Context) {
	if sid, ok := sessionFromContext(c); ok {
		response.OK(c, h.service.Diagnostics(c.Request.Context(), sid))
	}
}

// Sessions godoc
// @Summary Live sessions
// @Tags Debug
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /debug/sessions [get]
func (h *TimetableHandler) Sessions(c *gin.Context) {
	response.OK(c, h.service.Sessions())
}
