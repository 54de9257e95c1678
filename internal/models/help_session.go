package models

import "time"

type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusOpen      SessionStatus = "open"
	SessionStatusOngoing   SessionStatus = "ongoing"
	SessionStatusCompleted SessionStatus = "completed"
)

type SessionPriority string

const (
	PriorityNone   SessionPriority = ""
	PriorityLow    SessionPriority = "low"
	PriorityMedium SessionPriority = "medium"
	PriorityHigh   SessionPriority = "high"
)

const (
	SessionTypeGeneral = "general"
	SessionTypeSMS     = "sms"
)

type HelpSession struct {
	ID           string
	UserID       string
	Title        string
	SessionRecap *string
	LastMessage  *string
	Type         string
	Status       SessionStatus
	Priority     SessionPriority
	// Completed mirrors Status == completed. Rows written before the column
	// became generated may disagree; lifecycle transitions recompute it.
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s HelpSession) IsSMS() bool {
	return s.Type == SessionTypeSMS
}

type Message struct {
	ID            string
	Seq           int64
	HelpSessionID string
	Content       string
	IsAdmin       bool
	Read          bool
	CreatedAt     time.Time
}
