package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eldrix/admin/internal/apperr"
	"eldrix/admin/internal/service"
)

type uploadResponse struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	MIME string `json:"mime"`
	Size int64  `json:"size"`
}

func (h HandlerSet) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.respondError(c, apperr.Validation("file", "file is required"))
		return
	}
	defer file.Close()

	result, err := h.uploads.UploadImage(c.Request.Context(), service.UploadInput{
		File:         file,
		Size:         header.Size,
		DeclaredType: header.Header.Get("Content-Type"),
		SessionID:    c.PostForm("sessionId"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := gin.H{
		"image": uploadResponse{URL: result.URL, Key: result.Key, MIME: result.MIME, Size: result.Size},
	}
	if result.Message != nil {
		resp["message"] = newMessageResponse(*result.Message)
	}
	c.JSON(http.StatusCreated, resp)
}

func (h HandlerSet) ListRecordings(c *gin.Context) {
	recordings, err := h.uploads.ListRecordings(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recordings": newRecordingResponses(recordings)})
}
