package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

type RequestRecorder interface {
	RecordRequest(method, route string, status int, d time.Duration)
}

func Metrics(recorder RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
