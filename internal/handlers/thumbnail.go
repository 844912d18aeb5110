package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"blogsupport/internal/thumbnail"
)

func (h HandlerSet) Thumbnail(c *gin.Context) {
	data, err := h.thumbnails.Get(c.Request.Context(), c.Param("path"))
	if err != nil {
		if errors.Is(err, thumbnail.ErrInvalidPath) {
			c.String(http.StatusBadRequest, "Invalid path format")
			return
		}
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, thumbnail.ContentType, data)
}
