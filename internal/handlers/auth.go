package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eldrix/admin/internal/middleware"
	"eldrix/admin/internal/service"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username    string    `json:"username"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, invalidBody(err))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := middleware.StartAdminSession(c, h.sessionStore, result.Username); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Username:    result.Username,
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
	})
}

func (h HandlerSet) Logout(c *gin.Context) {
	if err := middleware.EndAdminSession(c, h.sessionStore); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
