package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogsupport/internal/service"
)

func respondError(c *gin.Context, err error) {
	if svcErr, ok := service.AsError(err); ok {
		status := statusFor(svcErr.Kind)
		if svcErr.Err != nil {
			_ = c.Error(svcErr.Err)
		}
		c.AbortWithStatusJSON(status, errorBody(status, svcErr.Message))
		return
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"statusCode": http.StatusInternalServerError,
		"error":      "internal_server_error",
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(http.StatusBadRequest, message))
}

func errorBody(status int, message string) gin.H {
	return gin.H{
		"statusCode": status,
		"error":      errorCode(status),
		"message":    message,
	}
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	default:
		return "internal_server_error"
	}
}
