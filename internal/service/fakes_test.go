package service

import (
	"context"
	"io"
	"sync"
	"time"

	"eldrix/admin/internal/models"
	"eldrix/admin/internal/notify"
	"eldrix/admin/internal/repository"
	"eldrix/admin/internal/storage"
	"eldrix/admin/internal/summarize"
)

// memStore is an in-memory stand-in for the session, message and user
// repositories, including the status guard on writes.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]models.HelpSession
	messages []models.Message
	users    map[string]models.User
	seq      int64

	batchLoads  int
	beforeWrite func()
}

func newMemStore() *memStore {
	return &memStore{
		sessions: map[string]models.HelpSession{},
		users:    map[string]models.User{},
	}
}

func (m *memStore) Create(_ context.Context, s models.HelpSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (models.HelpSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return models.HelpSession{}, repository.ErrHelpSessionNotFound
	}
	return s, nil
}

func (m *memStore) ListSummaries(_ context.Context) ([]repository.SessionRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []repository.SessionRow
	for _, s := range m.sessions {
		row := repository.SessionRow{Session: s, UserName: m.users[s.UserID].Name}
		for _, msg := range m.messages {
			if msg.HelpSessionID == s.ID {
				row.MessageCount++
				if !msg.Read {
					row.UnreadCount++
				}
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *memStore) ListByUser(_ context.Context, userID string) ([]models.HelpSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.HelpSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) Close(_ context.Context, s models.HelpSession) error {
	if m.beforeWrite != nil {
		m.beforeWrite()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[s.ID]
	if !ok || cur.Status == models.SessionStatusCompleted {
		return repository.ErrSessionNotWritable
	}
	s.Completed = s.Status == models.SessionStatusCompleted
	m.sessions[s.ID] = s
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return repository.ErrHelpSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memStore) CountByStatus(_ context.Context) (map[models.SessionStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[models.SessionStatus]int{}
	for _, s := range m.sessions {
		counts[s.Status]++
	}
	return counts, nil
}

// messageStore view over the same memStore.
type memMessages struct{ *memStore }

func (m memMessages) Append(_ context.Context, session models.HelpSession, msg models.Message) (models.Message, error) {
	if m.beforeWrite != nil {
		m.beforeWrite()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[session.ID]
	if !ok || cur.Status == models.SessionStatusCompleted {
		return models.Message{}, repository.ErrSessionNotWritable
	}
	if msg.IsAdmin && cur.Status == models.SessionStatusPending {
		cur.Status = models.SessionStatusOpen
	}
	cur.Completed = false
	cur.LastMessage = session.LastMessage
	cur.UpdatedAt = session.UpdatedAt
	m.sessions[session.ID] = cur

	m.seq++
	msg.Seq = m.seq
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m memMessages) ListBySession(_ context.Context, sessionID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, msg := range m.messages {
		if msg.HelpSessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m memMessages) ListBySessions(_ context.Context, sessionIDs []string) (map[string][]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchLoads++
	out := make(map[string][]models.Message)
	for _, id := range sessionIDs {
		for _, msg := range m.messages {
			if msg.HelpSessionID == id {
				out[id] = append(out[id], msg)
			}
		}
	}
	return out, nil
}

func (m memMessages) MarkSessionRead(_ context.Context, sessionID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.messages {
		if m.messages[i].HelpSessionID == sessionID && !m.messages[i].Read {
			m.messages[i].Read = true
			n++
		}
	}
	return n, nil
}

func (m memMessages) MarkRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.messages {
		if m.messages[i].ID == id {
			m.messages[i].Read = true
			return nil
		}
	}
	return repository.ErrMessageNotFound
}

func (m memMessages) CountUnread(_ context.Context, sessionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.messages {
		if msg.HelpSessionID == sessionID && !msg.Read {
			n++
		}
	}
	return n, nil
}

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m memUsers) GetByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m memUsers) List(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type fakeTechUsage struct {
	ListByUserFn func(ctx context.Context, userID string) ([]models.TechUsage, error)
}

func (f fakeTechUsage) ListByUser(ctx context.Context, userID string) ([]models.TechUsage, error) {
	if f.ListByUserFn == nil {
		return nil, nil
	}
	return f.ListByUserFn(ctx, userID)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

type fakeSummarizer struct {
	SummarizeFn func(ctx context.Context, transcript string) (summarize.Summary, error)
}

func (f fakeSummarizer) Summarize(ctx context.Context, transcript string) (summarize.Summary, error) {
	return f.SummarizeFn(ctx, transcript)
}

type fakeStorage struct {
	UploadFn         func(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	ListRecordingsFn func(ctx context.Context) ([]storage.ObjectInfo, error)
}

func (f fakeStorage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	return f.UploadFn(ctx, key, r, size, contentType)
}

func (f fakeStorage) ListRecordings(ctx context.Context) ([]storage.ObjectInfo, error) {
	return f.ListRecordingsFn(ctx)
}

type fakeLimiter struct {
	AllowFn func(ctx context.Context, key string) (bool, time.Duration, error)
	resets  []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	return f.AllowFn(ctx, key)
}

func (f *fakeLimiter) Reset(_ context.Context, key string) error {
	f.resets = append(f.resets, key)
	return nil
}
