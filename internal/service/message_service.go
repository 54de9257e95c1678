package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"eldrix/admin/internal/apperr"
	"eldrix/admin/internal/content"
	"eldrix/admin/internal/ids"
	"eldrix/admin/internal/lifecycle"
	"eldrix/admin/internal/metrics"
	"eldrix/admin/internal/models"
	"eldrix/admin/internal/notify"
	"eldrix/admin/internal/repository"
)

const maxMessageLength = 10000

type MessageService struct {
	sessions HelpSessionStore
	messages MessageStore
	relay    smsRelay
	now      func() time.Time
	log      zerolog.Logger
}

func NewMessageService(sessions HelpSessionStore, messages MessageStore, users UserStore, notifier notify.Notifier, log zerolog.Logger) *MessageService {
	return &MessageService{
		sessions: sessions,
		messages: messages,
		relay:    smsRelay{users: users, notifier: notifier, log: log},
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// Append adds a message and applies the lifecycle transition in the same
// write. Admin replies on SMS sessions are relayed to the user.
func (s *MessageService) Append(ctx context.Context, sessionID, body string, isAdmin bool) (models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.Message{}, apperr.Validation("content", "content is required")
	}
	if len(body) > maxMessageLength {
		return models.Message{}, apperr.Validation("content", fmt.Sprintf("content must be at most %d characters", maxMessageLength))
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return models.Message{}, err
	}

	now := s.now()
	updated, err := lifecycle.OnMessage(session, isAdmin, body, now)
	if err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		ID:            ids.NewSortableAt(now),
		HelpSessionID: session.ID,
		Content:       body,
		IsAdmin:       isAdmin,
		Read:          isAdmin,
		CreatedAt:     now,
	}

	saved, err := s.messages.Append(ctx, updated, msg)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotWritable) {
			return models.Message{}, s.explainRejectedWrite(ctx, sessionID, apperr.ErrSessionClosed)
		}
		return models.Message{}, fmt.Errorf("append message: %w", err)
	}

	metrics.MessagesAppended.WithLabelValues(metrics.Author(isAdmin)).Inc()
	s.log.Debug().
		Str("session_id", session.ID).
		Str("message_id", saved.ID).
		Bool("is_admin", isAdmin).
		Str("status", string(updated.Status)).
		Msg("message appended")

	if isAdmin {
		text, imageURL, _ := content.ExtractImageReference(body)
		s.relay.send(ctx, updated, notify.KindSessionMessage, text, imageURL)
	}
	return saved, nil
}

// EnsureWritable reports whether a message could be appended right now.
func (s *MessageService) EnsureWritable(ctx context.Context, sessionID string) error {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if lifecycle.IsClosed(session) {
		return apperr.ErrSessionClosed
	}
	return nil
}

func (s *MessageService) List(ctx context.Context, sessionID string) ([]models.Message, error) {
	if _, err := s.loadSession(ctx, sessionID); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func (s *MessageService) MarkSessionRead(ctx context.Context, sessionID string) (int64, error) {
	if _, err := s.loadSession(ctx, sessionID); err != nil {
		return 0, err
	}
	n, err := s.messages.MarkSessionRead(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("mark session read: %w", err)
	}
	return n, nil
}

func (s *MessageService) MarkRead(ctx context.Context, messageID string) error {
	if err := s.messages.MarkRead(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return apperr.NotFound("Message")
		}
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (s *MessageService) CountUnread(ctx context.Context, sessionID string) (int, error) {
	if _, err := s.loadSession(ctx, sessionID); err != nil {
		return 0, err
	}
	return s.messages.CountUnread(ctx, sessionID)
}

func (s *MessageService) loadSession(ctx context.Context, id string) (models.HelpSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHelpSessionNotFound) {
			return models.HelpSession{}, apperr.NotFound("Help session")
		}
		return models.HelpSession{}, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

// explainRejectedWrite re-reads a session after a guarded write matched no
// row. A concurrent delete yields NotFound, a concurrent close yields closed.
func (s *MessageService) explainRejectedWrite(ctx context.Context, id string, closed *apperr.Error) error {
	if _, err := s.loadSession(ctx, id); err != nil {
		return err
	}
	return closed
}
