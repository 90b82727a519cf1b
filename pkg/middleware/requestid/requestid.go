package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the request ID between client and server.
const Header = "X-Request-ID"

const ctxKey = "request_id"

// Middleware tags every request with an ID. A caller-supplied header wins
// so IDs survive proxies and retries.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(ctxKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the request ID, or "" when the middleware did not run.
func Value(c *gin.Context) string {
	id, _ := c.Value(ctxKey).(string)
	return id
}
