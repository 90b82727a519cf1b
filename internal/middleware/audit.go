package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edricrolandli/cssc-api/internal/models"
	"github.com/edricrolandli/cssc-api/internal/repository"
)

// Audit records an audit log row after each successful request. Failures
// to write the log never fail the request itself.
func Audit(repo *repository.UserRepository, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		status := c.Writer.Status()
		if status >= 400 {
			return
		}

		entry := &models.AuditLog{
			Action:     action,
			Resource:   resource,
			ResourceID: routeResourceID(c),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		}
		if claims := CurrentClaims(c); claims != nil {
			entry.UserID = &claims.UserID
		}
		entry.NewValues, _ = json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		})

		_ = repo.CreateAuditLog(c.Request.Context(), entry)
	}
}

// routeResourceID pulls the course ID out of the route parameters when the
// audited route carries one.
func routeResourceID(c *gin.Context) *string {
	for _, name := range []string{"course_id", "id"} {
		if v := c.Param(name); v != "" {
			return &v
		}
	}
	return nil
}
