package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery turns a handler panic into a 500 and logs it with the stack. If
// the handler already started the response only the connection state is
// cleaned up.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}

			_ = c.Error(fmt.Errorf("panic: %v", r))
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Str("route", c.FullPath()).
				Str("request_id", RequestIDFrom(c)).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"statusCode": http.StatusInternalServerError,
				"error":      "internal_server_error",
			})
		}()
		c.Next()
	}
}
