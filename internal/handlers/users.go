package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eldrix/admin/internal/service"
)

func (h HandlerSet) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, newUserResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

type createUserRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	TempPassword string `json:"tempPassword"`
}

func (h HandlerSet) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, invalidBody(err))
		return
	}

	result, err := h.users.Create(c.Request.Context(), service.CreateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		TempPassword: req.TempPassword,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": newUserResponse(result.User),
		"notifications": gin.H{
			"smsQueued": result.SMSQueued,
			"setupLink": result.SetupLink,
		},
	})
}

func (h HandlerSet) GetUser(c *gin.Context) {
	detail, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	usage := make([]techUsageResponse, 0, len(detail.TechUsage))
	for _, t := range detail.TechUsage {
		usage = append(usage, techUsageResponse{
			ID:             t.ID,
			DeviceType:     t.DeviceType,
			DeviceName:     t.DeviceName,
			SkillLevel:     t.SkillLevel,
			UsageFrequency: t.UsageFrequency,
			Notes:          t.Notes,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      newUserResponse(detail.User),
		"techUsage": usage,
	})
}

func (h HandlerSet) DeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
