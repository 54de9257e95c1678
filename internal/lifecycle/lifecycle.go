// Package lifecycle holds the status rules for help sessions. The functions
// are pure: they return an updated copy and never touch storage.
package lifecycle

import (
	"strings"
	"time"

	"eldrix/admin/internal/apperr"
	"eldrix/admin/internal/models"
)

const FallbackRecap = "Session closed by admin."

func NewSession(id, userID, title, sessionType string, priority models.SessionPriority, now time.Time) models.HelpSession {
	if sessionType == "" {
		sessionType = models.SessionTypeGeneral
	}
	return models.HelpSession{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Type:      sessionType,
		Status:    models.SessionStatusPending,
		Priority:  priority,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsClosed reads Status only. A Completed flag that disagrees with Status is
// a legacy artifact and gets overwritten by the next transition.
func IsClosed(s models.HelpSession) bool {
	return s.Status == models.SessionStatusCompleted
}

// OnMessage applies a new message to the session. An admin reply moves a
// pending session to open; every other status is left alone.
func OnMessage(s models.HelpSession, isAdmin bool, content string, now time.Time) (models.HelpSession, error) {
	if IsClosed(s) {
		return s, apperr.ErrSessionClosed
	}

	last := content
	s.LastMessage = &last
	s.UpdatedAt = now
	if isAdmin && s.Status == models.SessionStatusPending {
		s.Status = models.SessionStatusOpen
	}
	s.Completed = s.Status == models.SessionStatusCompleted
	return s, nil
}

// Close completes the session. An empty title keeps the current one.
func Close(s models.HelpSession, recap, title string, now time.Time) (models.HelpSession, error) {
	if IsClosed(s) {
		return s, apperr.ErrAlreadyClosed
	}
	recap = strings.TrimSpace(recap)
	if recap == "" {
		return s, apperr.Validation("recap", "recap is required")
	}

	s.Status = models.SessionStatusCompleted
	s.Completed = true
	s.SessionRecap = &recap
	if title = strings.TrimSpace(title); title != "" {
		s.Title = title
	}
	s.UpdatedAt = now
	return s, nil
}
