package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// New returns a CORS middleware that honors a list of allowed origins.
// An entry may carry one "*" wildcard, e.g. "https://*.railway.app".
func New(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	originSet := make(map[string]struct{}, len(allowedOrigins))
	var patterns []pattern
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(origin, "/")
		if origin == "*" {
			allowAll = true
			continue
		}
		if idx := strings.Index(origin, "*"); idx >= 0 {
			patterns = append(patterns, pattern{prefix: origin[:idx], suffix: origin[idx+1:]})
			continue
		}
		originSet[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if allowAll || allowed(originSet, patterns, origin) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			}
		} else if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With, X-Request-ID, X-Session-Token")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-Session-Token, Content-Disposition")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type pattern struct {
	prefix string
	suffix string
}

func (p pattern) match(origin string) bool {
	if len(origin) < len(p.prefix)+len(p.suffix) {
		return false
	}
	return strings.HasPrefix(origin, p.prefix) && strings.HasSuffix(origin, p.suffix)
}

func allowed(originSet map[string]struct{}, patterns []pattern, origin string) bool {
	origin = strings.TrimRight(origin, "/")
	if _, ok := originSet[origin]; ok {
		return true
	}
	for _, p := range patterns {
		if p.match(origin) {
			return true
		}
	}
	return false
}
