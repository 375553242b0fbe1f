package dto

import "github.com/noah-isme/fet-timetable-api/internal/models"

// BatchExportRequest starts an archive of every teacher or class timetable.
type BatchExportRequest struct {
	Kind models.BatchKind `json:"kind" validate:"required,oneof=teachers classes"`
}

