package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		// Use the route template so path cardinality stays bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RecordHTTPRequest(method, path, status, time.Since(start))
	}
}

// Timer measures one operation's duration.
type Timer struct {
	start   time.Time
	metrics *Metrics
	shared  int
}

// NewRunTimer starts timing a run request.
func NewRunTimer(metrics *Metrics, sharedItems int) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		shared:  sharedItems,
	}
}

// Stop records the run with its outcome status.
func (t *Timer) Stop(status string) {
	t.metrics.RecordRun(status, time.Since(t.start), t.shared)
}
