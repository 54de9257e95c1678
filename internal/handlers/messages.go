package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eldrix/admin/internal/apperr"
)

type postMessageRequest struct {
	Content string `json:"content"`
}

func (h HandlerSet) PostMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, invalidBody(err))
		return
	}

	msg, err := h.messages.Append(c.Request.Context(), c.Param("id"), req.Content, true)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": newMessageResponse(msg)})
}

func (h HandlerSet) MarkSessionRead(c *gin.Context) {
	updated, err := h.messages.MarkSessionRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h HandlerSet) MarkMessageRead(c *gin.Context) {
	if err := h.messages.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type inboundSMSRequest struct {
	SessionID string `json:"sessionId"`
	Content   string `json:"content"`
}

// BridgeInboundSMS records an end user's SMS reply forwarded by the bridge.
func (h HandlerSet) BridgeInboundSMS(c *gin.Context) {
	var req inboundSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, invalidBody(err))
		return
	}
	if req.SessionID == "" {
		h.respondError(c, apperr.Validation("sessionId", "sessionId is required"))
		return
	}

	msg, err := h.messages.Append(c.Request.Context(), req.SessionID, req.Content, false)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": newMessageResponse(msg)})
}
