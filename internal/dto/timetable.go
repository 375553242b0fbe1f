package dto

import "github.com/noah-isme/fet-timetable-api/internal/models"

// UploadResponse lists what an import made available.
type UploadResponse struct {
	Status    string   `json:"status"`
	Teachers  []string `json:"teachers"`
	Classes   []string `json:"classes"`
	Subgroups []string `json:"subgroups"`
	SessionID string   `json:"sessionId"`
}

// RenameRequest sets or clears one display name. A blank Renamed clears it.
type RenameRequest struct {
	Original string `json:"original" validate:"required,max=255"`
	Renamed  string `json:"renamed" validate:"max=255"`
}

// RenameResponse confirms a rename and returns the resulting tables.
type RenameResponse struct {
	Status   string          `json:"status"`
	Mappings models.Mappings `json:"mappings"`
}

// ClassViewQuery carries the class view labelling switches.
type ClassViewQuery struct {
	LabelMode     string `form:"labelMode" validate:"omitempty,oneof=diff always"`
	LabelSubjects string `form:"labelSubjects" validate:"max=1024"`
}

// SessionsResponse is the debug listing of live sessions.
type SessionsResponse struct {
	ActiveSessions int                  `json:"activeSessions"`
	Sessions       []models.SessionInfo `json:"sessions"`
}
