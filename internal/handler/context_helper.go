package handler

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/fet-timetable-api/pkg/errors"
	"github.com/noah-isme/fet-timetable-api/pkg/middleware/session"
	"github.com/noah-isme/fet-timetable-api/pkg/response"
)

// sessionFromContext returns the bound session id, answering 401 when the
// session middleware did not run.
func sessionFromContext(c *gin.Context) (string, bool) {
	sid := session.ID(c)
	if sid == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "session required"))
		return "", false
	}
	return sid, true
}
