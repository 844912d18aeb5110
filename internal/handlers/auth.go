package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogsupport/internal/middleware"
	"blogsupport/internal/service"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, service.MsgCredentialsMissing)
		return
	}

	result, err := h.auth.SignIn(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, result.User)
}

func (h HandlerSet) SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, service.MsgCredentialsMissing)
		return
	}

	result, err := h.auth.SignUp(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, result.User)
}

func (h HandlerSet) Status(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, service.UnauthorizedError(service.MsgUnauthorized, nil))
		return
	}
	c.JSON(http.StatusOK, user)
}

// sessionCookieMaxAge is one day in seconds regardless of the token TTL;
// an expired token inside a live cookie is still rejected by the gate.
const sessionCookieMaxAge = 24 * 60 * 60

func (h HandlerSet) setSessionCookie(c *gin.Context, token string) {
	sec := h.cfg.Security
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sec.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   sec.CookieDomain,
		MaxAge:   sessionCookieMaxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}
