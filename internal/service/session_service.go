package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"eldrix/admin/internal/apperr"
	"eldrix/admin/internal/ids"
	"eldrix/admin/internal/lifecycle"
	"eldrix/admin/internal/listing"
	"eldrix/admin/internal/metrics"
	"eldrix/admin/internal/models"
	"eldrix/admin/internal/notify"
	"eldrix/admin/internal/repository"
	"eldrix/admin/internal/summarize"
)

type RecapSource string

const (
	RecapCustom   RecapSource = "custom"
	RecapAI       RecapSource = "ai"
	RecapFallback RecapSource = "fallback"
)

type CreateSessionInput struct {
	UserID   string `validate:"required"`
	Title    string `validate:"required,max=200"`
	Type     string `validate:"omitempty,oneof=general sms"`
	Priority string `validate:"omitempty,oneof=low medium high"`
}

type SessionDetail struct {
	Session  models.HelpSession
	Messages []models.Message
}

type CloseResult struct {
	Session     models.HelpSession
	Recap       string
	Title       string
	RecapSource RecapSource
}

type SessionService struct {
	sessions         HelpSessionStore
	messages         MessageStore
	users            UserStore
	summarizer       summarize.Summarizer
	summarizeTimeout time.Duration
	relay            smsRelay
	now              func() time.Time
	log              zerolog.Logger
}

func NewSessionService(
	sessions HelpSessionStore,
	messages MessageStore,
	users UserStore,
	summarizer summarize.Summarizer,
	summarizeTimeout time.Duration,
	notifier notify.Notifier,
	log zerolog.Logger,
) *SessionService {
	if summarizer == nil {
		summarizer = summarize.Noop{}
	}
	if summarizeTimeout <= 0 {
		summarizeTimeout = 10 * time.Second
	}
	return &SessionService{
		sessions:         sessions,
		messages:         messages,
		users:            users,
		summarizer:       summarizer,
		summarizeTimeout: summarizeTimeout,
		relay:            smsRelay{users: users, notifier: notifier, log: log},
		now:              func() time.Time { return time.Now().UTC() },
		log:              log,
	}
}

func (s *SessionService) Create(ctx context.Context, input CreateSessionInput) (models.HelpSession, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return models.HelpSession{}, err
	}

	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.HelpSession{}, apperr.NotFound("User")
		}
		return models.HelpSession{}, fmt.Errorf("load user: %w", err)
	}

	session := lifecycle.NewSession(ids.New(), input.UserID, input.Title, input.Type, models.SessionPriority(input.Priority), s.now())
	if err := s.sessions.Create(ctx, session); err != nil {
		return models.HelpSession{}, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().Str("session_id", session.ID).Str("user_id", session.UserID).Msg("help session created")
	return session, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (models.HelpSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHelpSessionNotFound) {
			return models.HelpSession{}, apperr.NotFound("Help session")
		}
		return models.HelpSession{}, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

func (s *SessionService) GetWithMessages(ctx context.Context, id string) (SessionDetail, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return SessionDetail{}, err
	}
	messages, err := s.messages.ListBySession(ctx, id)
	if err != nil {
		return SessionDetail{}, fmt.Errorf("list messages: %w", err)
	}
	return SessionDetail{Session: session, Messages: messages}, nil
}

// List returns every session grouped for the dashboard. withMessages embeds
// each session's full log, loaded in one batched query.
func (s *SessionService) List(ctx context.Context, withMessages bool) (listing.Buckets, error) {
	rows, err := s.sessions.ListSummaries(ctx)
	if err != nil {
		return listing.Buckets{}, fmt.Errorf("list sessions: %w", err)
	}

	var logs map[string][]models.Message
	if withMessages {
		ids := make([]string, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.Session.ID)
		}
		if logs, err = s.messages.ListBySessions(ctx, ids); err != nil {
			return listing.Buckets{}, fmt.Errorf("list messages: %w", err)
		}
	}

	summaries := make([]listing.SessionSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, listing.SessionSummary{
			Session:      row.Session,
			UserName:     row.UserName,
			MessageCount: row.MessageCount,
			UnreadCount:  row.UnreadCount,
			Messages:     logs[row.Session.ID],
		})
	}
	return listing.Bucketize(summaries), nil
}

// ListByUser returns the user's sessions, newest first. Messages stay nil
// unless withMessages is set.
func (s *SessionService) ListByUser(ctx context.Context, userID string, withMessages bool) ([]SessionDetail, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}

	var logs map[string][]models.Message
	if withMessages {
		ids := make([]string, 0, len(sessions))
		for _, session := range sessions {
			ids = append(ids, session.ID)
		}
		if logs, err = s.messages.ListBySessions(ctx, ids); err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
	}

	out := make([]SessionDetail, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, SessionDetail{Session: session, Messages: logs[session.ID]})
	}
	return out, nil
}

// Close completes a session. Without a recap one is generated from the
// transcript; if that fails the fixed fallback recap is stored instead.
func (s *SessionService) Close(ctx context.Context, id, recap string) (CloseResult, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return CloseResult{}, err
	}
	if lifecycle.IsClosed(session) {
		return CloseResult{}, apperr.ErrAlreadyClosed
	}

	recap = strings.TrimSpace(recap)
	title := ""
	source := RecapCustom
	if recap == "" {
		recap, title, source = s.generateRecap(ctx, session)
	}

	closed, err := lifecycle.Close(session, recap, title, s.now())
	if err != nil {
		return CloseResult{}, err
	}

	if err := s.sessions.Close(ctx, closed); err != nil {
		if errors.Is(err, repository.ErrSessionNotWritable) {
			if _, getErr := s.Get(ctx, id); getErr != nil {
				return CloseResult{}, getErr
			}
			return CloseResult{}, apperr.ErrAlreadyClosed
		}
		return CloseResult{}, fmt.Errorf("close session: %w", err)
	}

	metrics.SessionsClosed.WithLabelValues(string(source)).Inc()
	s.log.Info().
		Str("session_id", closed.ID).
		Str("recap_source", string(source)).
		Msg("help session closed")

	s.relay.send(ctx, closed, notify.KindSessionClosed, recap, "")

	return CloseResult{Session: closed, Recap: recap, Title: title, RecapSource: source}, nil
}

func (s *SessionService) generateRecap(ctx context.Context, session models.HelpSession) (string, string, RecapSource) {
	messages, err := s.messages.ListBySession(ctx, session.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID).Msg("load transcript failed, using fallback recap")
		return lifecycle.FallbackRecap, "", RecapFallback
	}

	ctx, cancel := context.WithTimeout(ctx, s.summarizeTimeout)
	defer cancel()

	summary, err := s.summarizer.Summarize(ctx, summarize.Transcript(messages))
	if err != nil || strings.TrimSpace(summary.Recap) == "" {
		if !errors.Is(err, summarize.ErrDisabled) {
			s.log.Warn().Err(err).Str("session_id", session.ID).Msg("recap generation failed, using fallback recap")
		}
		return lifecycle.FallbackRecap, "", RecapFallback
	}
	return summary.Recap, summary.Title, RecapAI
}

func (s *SessionService) Delete(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrHelpSessionNotFound) {
			return apperr.NotFound("Help session")
		}
		return fmt.Errorf("delete session: %w", err)
	}
	s.log.Info().Str("session_id", id).Msg("help session deleted")
	return nil
}

func (s *SessionService) CountByStatus(ctx context.Context) (map[models.SessionStatus]int, error) {
	return s.sessions.CountByStatus(ctx)
}
