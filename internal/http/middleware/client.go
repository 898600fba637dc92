package middleware

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderClientID lets callers name themselves for the execution log and
	// idempotency scoping. It is unauthenticated, so rate limiting ignores it.
	HeaderClientID = "X-Client-ID"

	clientIDKey    = "clientID"
	maxClientIDLen = 64
)

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:@]+$`)

// ClientID resolves the caller identity and stores it under "clientID".
// A well-formed X-Client-ID header wins; anything else falls back to
// "ip:<client ip>".
func ClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientIDKey, resolveClientID(c))
		c.Next()
	}
}

// ClientIDFrom returns the identity stored by ClientID, resolving it on the
// spot when the middleware is not installed.
func ClientIDFrom(c *gin.Context) string {
	if v, ok := c.Get(clientIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return resolveClientID(c)
}

func resolveClientID(c *gin.Context) string {
	if c.Request != nil {
		id := strings.TrimSpace(c.GetHeader(HeaderClientID))
		if id != "" && len(id) <= maxClientIDLen && clientIDPattern.MatchString(id) {
			return id
		}
	}
	return "ip:" + c.ClientIP()
}
