package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogsupport/internal/middleware"
	"blogsupport/internal/models"
	"blogsupport/internal/validation"
)

func (h HandlerSet) CreateComment(c *gin.Context) {
	var req validation.CommentCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, validation.MsgBadRequest)
		return
	}

	created, err := h.comments.Create(c.Request.Context(), req, attachedUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

func (h HandlerSet) DeleteComment(c *gin.Context) {
	deleted, err := h.comments.Delete(c.Request.Context(), c.Query("id"), attachedUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deleted)
}

func (h HandlerSet) UpdateComment(c *gin.Context) {
	var req validation.CommentUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, validation.MsgBadRequest)
		return
	}

	updated, err := h.comments.Update(c.Request.Context(), req, attachedUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h HandlerSet) ListComments(c *gin.Context) {
	threads, err := h.comments.List(c.Request.Context(), c.Query("postSlug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, threads)
}

func (h HandlerSet) RecentComments(c *gin.Context) {
	comments, err := h.comments.Recent(c.Request.Context(), c.Query("count"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func attachedUser(c *gin.Context) *models.User {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return &user
}
