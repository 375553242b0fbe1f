package handler

import "github.com/gin-gonic/gin"

// Handlers bundles every HTTP handler of the API.
type Handlers struct {
	Timetable *TimetableHandler
	Rename    *RenameHandler
	Export    *ExportHandler
	Metrics   *MetricsHandler
}

// Register mounts health and metrics routes at the root and the API under prefix. sessionMW
// guards every route that reads or writes session data.
func (h Handlers) Register(r *gin.Engine, prefix string, sessionMW gin.HandlerFunc) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.GET("/debug/sessions", h.Timetable.Sessions)
	api.GET("/export/download/:token", h.Export.Download)

	scoped := api.Group("")
	if sessionMW != nil {
		scoped.Use(sessionMW)
	}

	scoped.POST("/upload", h.Timetable.Upload)
	scoped.GET("/teachers", h.Timetable.Teachers)
	scoped.GET("/subgroups", h.Timetable.Classes)
	scoped.GET("/classes/:name/subgroups", h.Timetable.ClassSubgroups)
	scoped.GET("/timetable/teacher/:name", h.Timetable.TeacherView)
	scoped.GET("/timetable/subgroup/:name", h.Timetable.ClassView)
	scoped.GET("/timetable/room/:name", h.Timetable.RoomView)
	scoped.GET("/rooms/list", h.Timetable.Rooms)
	scoped.GET("/rooms/vacant", h.Timetable.VacantRooms)
	scoped.GET("/rooms/vacant/diagnostics", h.Timetable.Diagnostics)

	scoped.GET("/rename/teachers/list", h.Rename.ListTeachers)
	scoped.GET("/rename/rooms/list", h.Rename.ListRooms)
	scoped.GET("/rename/mappings", h.Rename.Mappings)
	scoped.POST("/rename/teacher", h.Rename.RenameTeacher)
	scoped.POST("/rename/room", h.Rename.RenameRoom)

	scoped.POST("/export/batch", h.Export.CreateBatch)
	scoped.GET("/export/batch/:id", h.Export.BatchStatus)
	scoped.GET("/export/:format/teacher/:name", h.Export.Teacher)
	scoped.GET("/export/:format/subgroup/:name", h.Export.Subgroup)
	scoped.GET("/export/:format/room/:name", h.Export.Room)
	scoped.GET("/export/:format/vacant-rooms", h.Export.VacantRooms)
}
