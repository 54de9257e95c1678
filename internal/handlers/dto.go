package handlers

import (
	"time"

	"eldrix/admin/internal/content"
	"eldrix/admin/internal/listing"
	"eldrix/admin/internal/models"
	"eldrix/admin/internal/service"
	"eldrix/admin/internal/storage"
)

type sessionResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	Type         string    `json:"type"`
	Priority     string    `json:"priority,omitempty"`
	Completed    bool      `json:"completed"`
	SessionRecap *string   `json:"sessionRecap"`
	LastMessage  *string   `json:"lastMessage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func newSessionResponse(s models.HelpSession) sessionResponse {
	return sessionResponse{
		ID:           s.ID,
		UserID:       s.UserID,
		Title:        s.Title,
		Status:       string(s.Status),
		Type:         s.Type,
		Priority:     string(s.Priority),
		Completed:    s.Completed,
		SessionRecap: s.SessionRecap,
		LastMessage:  s.LastMessage,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// userSessionResponse carries the log only when it was asked for; a nil
// pointer drops the key, an empty log renders as [].
type userSessionResponse struct {
	sessionResponse
	Messages *[]messageResponse `json:"messages,omitempty"`
}

func newUserSessionResponses(list []service.SessionDetail, withMessages bool) []userSessionResponse {
	out := make([]userSessionResponse, 0, len(list))
	for _, d := range list {
		out = append(out, userSessionResponse{
			sessionResponse: newSessionResponse(d.Session),
			Messages:        newMessageLog(d.Messages, withMessages),
		})
	}
	return out
}

type sessionSummaryResponse struct {
	sessionResponse
	UserName     string             `json:"userName"`
	MessageCount int                `json:"messageCount"`
	UnreadCount  int                `json:"unreadCount"`
	Messages     *[]messageResponse `json:"messages,omitempty"`
}

func newSummaryResponses(list []listing.SessionSummary, withMessages bool) []sessionSummaryResponse {
	out := make([]sessionSummaryResponse, 0, len(list))
	for _, s := range list {
		out = append(out, sessionSummaryResponse{
			sessionResponse: newSessionResponse(s.Session),
			UserName:        s.UserName,
			MessageCount:    s.MessageCount,
			UnreadCount:     s.UnreadCount,
			Messages:        newMessageLog(s.Messages, withMessages),
		})
	}
	return out
}

type bucketResponse struct {
	Status   string                   `json:"status"`
	Sessions []sessionSummaryResponse `json:"sessions"`
}

type messageResponse struct {
	ID            string         `json:"id"`
	HelpSessionID string         `json:"helpSessionId"`
	Content       string         `json:"content"`
	Parts         []content.Part `json:"parts"`
	IsAdmin       bool           `json:"isAdmin"`
	Read          bool           `json:"read"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func newMessageResponse(m models.Message) messageResponse {
	parts := content.Parse(m.Content).Parts
	if parts == nil {
		parts = []content.Part{}
	}
	return messageResponse{
		ID:            m.ID,
		HelpSessionID: m.HelpSessionID,
		Content:       m.Content,
		Parts:         parts,
		IsAdmin:       m.IsAdmin,
		Read:          m.Read,
		CreatedAt:     m.CreatedAt,
	}
}

func newMessageResponses(list []models.Message) []messageResponse {
	out := make([]messageResponse, 0, len(list))
	for _, m := range list {
		out = append(out, newMessageResponse(m))
	}
	return out
}

func newMessageLog(list []models.Message, include bool) *[]messageResponse {
	if !include {
		return nil
	}
	out := newMessageResponses(list)
	return &out
}

type userResponse struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Email                  string    `json:"email"`
	Phone                  string    `json:"phone"`
	Description            *string   `json:"description"`
	ImageURL               *string   `json:"imageUrl"`
	Age                    *int      `json:"age"`
	TechUsage              *string   `json:"techUsage"`
	AccessibilityNeeds     *string   `json:"accessibilityNeeds"`
	PreferredContactMethod string    `json:"preferredContactMethod"`
	ExperienceLevel        string    `json:"experienceLevel"`
	EmailList              bool      `json:"emailList"`
	SMSConsent             bool      `json:"smsConsent"`
	Notification           bool      `json:"notification"`
	DarkMode               bool      `json:"darkMode"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:                     u.ID,
		Name:                   u.Name,
		Email:                  u.Email,
		Phone:                  u.Phone,
		Description:            u.Description,
		ImageURL:               u.ImageURL,
		Age:                    u.Age,
		TechUsage:              u.TechUsage,
		AccessibilityNeeds:     u.AccessibilityNeeds,
		PreferredContactMethod: string(u.PreferredContactMethod),
		ExperienceLevel:        string(u.ExperienceLevel),
		EmailList:              u.EmailList,
		SMSConsent:             u.SMSConsent,
		Notification:           u.Notification,
		DarkMode:               u.DarkMode,
		CreatedAt:              u.CreatedAt,
		UpdatedAt:              u.UpdatedAt,
	}
}

type techUsageResponse struct {
	ID             string  `json:"id"`
	DeviceType     string  `json:"deviceType"`
	DeviceName     string  `json:"deviceName"`
	SkillLevel     string  `json:"skillLevel"`
	UsageFrequency string  `json:"usageFrequency"`
	Notes          *string `json:"notes"`
}

type recordingResponse struct {
	Key          string    `json:"key"`
	FileName     string    `json:"fileName"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

func newRecordingResponses(objects []storage.ObjectInfo) []recordingResponse {
	out := make([]recordingResponse, 0, len(objects))
	for _, o := range objects {
		out = append(out, recordingResponse{
			Key:          o.Key,
			FileName:     o.FileName,
			URL:          o.URL,
			Size:         o.Size,
			LastModified: o.LastModified,
		})
	}
	return out
}
