package service

import (
	"context"
	"io"

	"eldrix/admin/internal/models"
	"eldrix/admin/internal/repository"
	"eldrix/admin/internal/storage"
)

// The repository types satisfy these; tests substitute fakes.

type HelpSessionStore interface {
	Create(ctx context.Context, s models.HelpSession) error
	GetByID(ctx context.Context, id string) (models.HelpSession, error)
	ListSummaries(ctx context.Context) ([]repository.SessionRow, error)
	ListByUser(ctx context.Context, userID string) ([]models.HelpSession, error)
	Close(ctx context.Context, s models.HelpSession) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[models.SessionStatus]int, error)
}

type MessageStore interface {
	Append(ctx context.Context, session models.HelpSession, msg models.Message) (models.Message, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Message, error)
	ListBySessions(ctx context.Context, sessionIDs []string) (map[string][]models.Message, error)
	MarkSessionRead(ctx context.Context, sessionID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
	CountUnread(ctx context.Context, sessionID string) (int, error)
}

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}

type TechUsageStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.TechUsage, error)
}

type ObjectStorage interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	ListRecordings(ctx context.Context) ([]storage.ObjectInfo, error)
}

var (
	_ HelpSessionStore = (*repository.HelpSessionRepository)(nil)
	_ MessageStore     = (*repository.MessageRepository)(nil)
	_ UserStore        = (*repository.UserRepository)(nil)
	_ TechUsageStore   = (*repository.TechUsageRepository)(nil)
	_ ObjectStorage    = (*storage.ObjectStore)(nil)
)
