// Package session binds every request to an anonymous timetable session.
//
// The session id travels as a signed token, either in the X-Session-Token
// header or in a cookie. Requests without a valid token get a fresh session
// and the new token is returned on both channels.
package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderKey  = "X-Session-Token"
	contextKey = "session_id"
)

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(sessionID string) (string, time.Time, error)
	Parse(token string) (string, error)
}

// Options configure the cookie half of the transport.
type Options struct {
	CookieName string
	Secure     bool
}

// Middleware resolves or creates the session for each request.
func Middleware(issuer TokenIssuer, opts Options, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if sid := resolve(c, issuer, opts); sid != "" {
			c.Set(contextKey, sid)
			c.Next()
			return
		}

		sid := uuid.NewString()
		token, expires, err := issuer.Issue(sid)
		if err != nil {
			logger.Error("issue session token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL_ERROR", "message": "unable to start session"}})
			return
		}

		c.Writer.Header().Set(HeaderKey, token)
		if opts.CookieName != "" {
			maxAge := int(time.Until(expires).Seconds())
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(opts.CookieName, token, maxAge, "/", "", opts.Secure, true)
		}

		c.Set(contextKey, sid)
		c.Next()
	}
}

// ID returns the session id bound to the request, if any.
func ID(c *gin.Context) string {
	if v, ok := c.Get(contextKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithID binds a session id directly. Used by tests and internal callers.
func WithID(c *gin.Context, sessionID string) {
	c.Set(contextKey, sessionID)
}

func resolve(c *gin.Context, issuer TokenIssuer, opts Options) string {
	candidates := []string{c.GetHeader(HeaderKey)}
	if opts.CookieName != "" {
		if cookie, err := c.Cookie(opts.CookieName); err == nil {
			candidates = append(candidates, cookie)
		}
	}

	for _, token := range candidates {
		if token == "" {
			continue
		}
		if sid, err := issuer.Parse(token); err == nil && sid != "" {
			return sid
		}
	}
	return ""
}
