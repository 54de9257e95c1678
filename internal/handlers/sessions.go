package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eldrix/admin/internal/service"
)

func (h HandlerSet) ListSessions(c *gin.Context) {
	withMessages, _ := strconv.ParseBool(c.Query("withMessages"))
	buckets, err := h.sessions.List(c.Request.Context(), withMessages)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if flat, _ := strconv.ParseBool(c.Query("flat")); flat {
		c.JSON(http.StatusOK, gin.H{"sessions": newSummaryResponses(buckets.Flatten(), withMessages)})
		return
	}

	ordered := buckets.Ordered()
	resp := make([]bucketResponse, 0, len(ordered))
	for _, b := range ordered {
		resp = append(resp, bucketResponse{Status: b.Name, Sessions: newSummaryResponses(b.Sessions, withMessages)})
	}
	c.JSON(http.StatusOK, gin.H{"buckets": resp})
}

type createSessionRequest struct {
	UserID   string `json:"userId"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
}

func (h HandlerSet) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, invalidBody(err))
		return
	}

	session, err := h.sessions.Create(c.Request.Context(), service.CreateSessionInput{
		UserID:   req.UserID,
		Title:    req.Title,
		Type:     req.Type,
		Priority: req.Priority,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": newSessionResponse(session)})
}

func (h HandlerSet) GetSession(c *gin.Context) {
	detail, err := h.sessions.GetWithMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":  newSessionResponse(detail.Session),
		"messages": newMessageResponses(detail.Messages),
	})
}

func (h HandlerSet) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type closeSessionRequest struct {
	Recap string `json:"recap"`
}

func (h HandlerSet) CloseSession(c *gin.Context) {
	var req closeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(c, invalidBody(err))
		return
	}

	result, err := h.sessions.Close(c.Request.Context(), c.Param("id"), req.Recap)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":     newSessionResponse(result.Session),
		"recap":       result.Recap,
		"title":       result.Title,
		"recapSource": result.RecapSource,
	})
}

func (h HandlerSet) ListUserSessions(c *gin.Context) {
	withMessages, _ := strconv.ParseBool(c.Query("withMessages"))
	sessions, err := h.sessions.ListByUser(c.Request.Context(), c.Param("id"), withMessages)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": newUserSessionResponses(sessions, withMessages)})
}
