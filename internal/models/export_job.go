package models

import "time"

// ExportFormat enumerates rendered document types.
type ExportFormat string

const (
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatICS  ExportFormat = "ics"
)

// ExportTarget is the view an export renders.
type ExportTarget string

const (
	ExportTargetTeacher     ExportTarget = "teacher"
	ExportTargetSubgroup    ExportTarget = "subgroup"
	ExportTargetRoom        ExportTarget = "room"
	ExportTargetVacantRooms ExportTarget = "vacant-rooms"
)

// BatchKind selects which entity set a batch export covers.
type BatchKind string

const (
	BatchKindTeachers BatchKind = "teachers"
	BatchKindClasses  BatchKind = "classes"
)

// BatchStatus captures background job lifecycle states.
type BatchStatus string

const (
	BatchStatusQueued     BatchStatus = "QUEUED"
	BatchStatusProcessing BatchStatus = "PROCESSING"
	BatchStatusFinished   BatchStatus = "FINISHED"
	BatchStatusFailed     BatchStatus = "FAILED"
)

// BatchJob tracks one asynchronous archive build.
type BatchJob struct {
	ID           string      `json:"id"`
	SessionID    string      `json:"-"`
	Kind         BatchKind   `json:"kind"`
	Status       BatchStatus `json:"status"`
	Total        int         `json:"total"`
	Done         int         `json:"done"`
	ResultPath   string      `json:"-"`
	ResultURL    *string     `json:"resultUrl,omitempty"`
	ExpiresAt    *time.Time  `json:"expiresAt,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	FinishedAt   *time.Time  `json:"finishedAt,omitempty"`
	ErrorMessage *string     `json:"errorMessage,omitempty"`
}
