package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eldrix/admin/internal/apperr"
	"eldrix/admin/internal/config"
	"eldrix/admin/internal/listing"
	"eldrix/admin/internal/middleware"
	"eldrix/admin/internal/models"
	"eldrix/admin/internal/security"
	"eldrix/admin/internal/service"
	"eldrix/admin/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSessions struct {
	CreateFn          func(ctx context.Context, input service.CreateSessionInput) (models.HelpSession, error)
	GetWithMessagesFn func(ctx context.Context, id string) (service.SessionDetail, error)
	ListFn            func(ctx context.Context, withMessages bool) (listing.Buckets, error)
	ListByUserFn      func(ctx context.Context, userID string, withMessages bool) ([]service.SessionDetail, error)
	CloseFn           func(ctx context.Context, id, recap string) (service.CloseResult, error)
	DeleteFn          func(ctx context.Context, id string) error
}

func (f fakeSessions) Create(ctx context.Context, input service.CreateSessionInput) (models.HelpSession, error) {
	return f.CreateFn(ctx, input)
}

func (f fakeSessions) GetWithMessages(ctx context.Context, id string) (service.SessionDetail, error) {
	return f.GetWithMessagesFn(ctx, id)
}

func (f fakeSessions) List(ctx context.Context, withMessages bool) (listing.Buckets, error) {
	return f.ListFn(ctx, withMessages)
}

func (f fakeSessions) ListByUser(ctx context.Context, userID string, withMessages bool) ([]service.SessionDetail, error) {
	return f.ListByUserFn(ctx, userID, withMessages)
}

func (f fakeSessions) Close(ctx context.Context, id, recap string) (service.CloseResult, error) {
	return f.CloseFn(ctx, id, recap)
}

func (f fakeSessions) Delete(ctx context.Context, id string) error {
	return f.DeleteFn(ctx, id)
}

type fakeMessages struct {
	AppendFn          func(ctx context.Context, sessionID, body string, isAdmin bool) (models.Message, error)
	MarkSessionReadFn func(ctx context.Context, sessionID string) (int64, error)
	MarkReadFn        func(ctx context.Context, messageID string) error
}

func (f fakeMessages) Append(ctx context.Context, sessionID, body string, isAdmin bool) (models.Message, error) {
	return f.AppendFn(ctx, sessionID, body, isAdmin)
}

func (f fakeMessages) MarkSessionRead(ctx context.Context, sessionID string) (int64, error) {
	return f.MarkSessionReadFn(ctx, sessionID)
}

func (f fakeMessages) MarkRead(ctx context.Context, messageID string) error {
	return f.MarkReadFn(ctx, messageID)
}

type fakeUsers struct {
	CreateFn func(ctx context.Context, input service.CreateUserInput) (service.CreateUserResult, error)
	GetFn    func(ctx context.Context, id string) (service.UserDetail, error)
	ListFn   func(ctx context.Context) ([]models.User, error)
	DeleteFn func(ctx context.Context, id string) error
}

func (f fakeUsers) Create(ctx context.Context, input service.CreateUserInput) (service.CreateUserResult, error) {
	return f.CreateFn(ctx, input)
}

func (f fakeUsers) Get(ctx context.Context, id string) (service.UserDetail, error) {
	return f.GetFn(ctx, id)
}

func (f fakeUsers) List(ctx context.Context) ([]models.User, error) {
	return f.ListFn(ctx)
}

func (f fakeUsers) Delete(ctx context.Context, id string) error {
	return f.DeleteFn(ctx, id)
}

type fakeUploads struct {
	UploadImageFn    func(ctx context.Context, input service.UploadInput) (service.UploadResult, error)
	ListRecordingsFn func(ctx context.Context) ([]storage.ObjectInfo, error)
}

func (f fakeUploads) UploadImage(ctx context.Context, input service.UploadInput) (service.UploadResult, error) {
	return f.UploadImageFn(ctx, input)
}

func (f fakeUploads) ListRecordings(ctx context.Context) ([]storage.ObjectInfo, error) {
	return f.ListRecordingsFn(ctx)
}

type fakeAuth struct {
	LoginFn func(ctx context.Context, input service.LoginInput) (service.LoginResult, error)
}

func (f fakeAuth) Login(ctx context.Context, input service.LoginInput) (service.LoginResult, error) {
	return f.LoginFn(ctx, input)
}

func (f fakeAuth) ValidateToken(token string) (*security.AdminClaims, error) {
	if token != "test-token" {
		return nil, apperr.ErrUnauthorized
	}
	return &security.AdminClaims{Username: "admin"}, nil
}

type okPinger struct{ err error }

func (p okPinger) Ping(context.Context) error { return p.err }

const bridgeSecret = "bridge-secret"

func newRouter(t *testing.T, d Deps) *gin.Engine {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := &config.AppConfig{Environment: "test"}
	cfg.Bridge.Secret = bridgeSecret
	cfg.Bridge.MaxSkew = 5 * time.Minute
	cfg.Security.SessionSecret = "0123456789abcdef0123456789abcdef"
	cfg.Security.SessionMaxAge = time.Hour

	d.Log = zerolog.Nop()
	d.Config = cfg
	d.SessionStore = middleware.NewSessionStore(cfg.Security, false)
	d.Cache = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	if d.DB == nil {
		d.DB = okPinger{}
	}
	if d.Auth == nil {
		d.Auth = fakeAuth{}
	}

	r := gin.New()
	NewHandlerSet(d).Register(r.Group("/api"))
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer test-token")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "body: %s", rec.Body.String())
	return errObj["code"].(string)
}

var now = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r := newRouter(t, Deps{})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))
}

func TestLoginSetsCookieThatAuthenticates(t *testing.T) {
	r := newRouter(t, Deps{
		Auth: fakeAuth{LoginFn: func(_ context.Context, in service.LoginInput) (service.LoginResult, error) {
			if in.Password != "right" {
				return service.LoginResult{}, apperr.ErrUnauthorized.WithMessage("Invalid credentials")
			}
			return service.LoginResult{Username: "admin", AccessToken: "jwt", ExpiresAt: now}, nil
		}},
		Users: fakeUsers{ListFn: func(context.Context) ([]models.User, error) { return nil, nil }},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"admin","password":"wrong"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"admin","password":"right"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jwt", decode(t, rec)["accessToken"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRateLimited(t *testing.T) {
	r := newRouter(t, Deps{Auth: fakeAuth{LoginFn: func(context.Context, service.LoginInput) (service.LoginResult, error) {
		return service.LoginResult{}, apperr.ErrRateLimited
	}}})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"a","password":"b"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func summary(id string, status models.SessionStatus) listing.SessionSummary {
	return listing.SessionSummary{
		Session:  models.HelpSession{ID: id, Status: status, Type: models.SessionTypeGeneral, CreatedAt: now, UpdatedAt: now},
		UserName: "Ada",
	}
}

func TestListSessions(t *testing.T) {
	buckets := listing.Buckets{
		Open:    []listing.SessionSummary{summary("s2", models.SessionStatusOpen)},
		Pending: []listing.SessionSummary{summary("s1", models.SessionStatusPending)},
	}
	r := newRouter(t, Deps{Sessions: fakeSessions{ListFn: func(_ context.Context, withMessages bool) (listing.Buckets, error) {
		assert.False(t, withMessages)
		return buckets, nil
	}}})

	t.Run("bucketed", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/api/sessions", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Buckets []struct {
				Status   string `json:"status"`
				Sessions []struct {
					ID       string `json:"id"`
					UserName string `json:"userName"`
				} `json:"sessions"`
			} `json:"buckets"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Buckets, 4)
		assert.Equal(t, "open", body.Buckets[0].Status)
		assert.Equal(t, "s2", body.Buckets[0].Sessions[0].ID)
		assert.Equal(t, "Ada", body.Buckets[0].Sessions[0].UserName)
		assert.Equal(t, "pending", body.Buckets[1].Status)
		assert.Equal(t, "s1", body.Buckets[1].Sessions[0].ID)
		assert.Equal(t, "ongoing", body.Buckets[2].Status)
		assert.Equal(t, "completed", body.Buckets[3].Status)
	})

	t.Run("flat", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/api/sessions?flat=true", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Sessions []struct {
				ID string `json:"id"`
			} `json:"sessions"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Sessions, 2)
		assert.Equal(t, "s2", body.Sessions[0].ID)
		assert.Equal(t, "s1", body.Sessions[1].ID)
		assert.NotContains(t, rec.Body.String(), `"messages"`)
	})
}

func TestListSessionsWithMessages(t *testing.T) {
	withLog := summary("s2", models.SessionStatusOpen)
	withLog.Messages = []models.Message{
		{ID: "m1", HelpSessionID: "s2", Content: "wifi is down", CreatedAt: now},
		{ID: "m2", HelpSessionID: "s2", Content: "[Image: https://cdn.eldrix.com/r.png]", IsAdmin: true, Read: true, CreatedAt: now},
	}
	buckets := listing.Buckets{
		Open:    []listing.SessionSummary{withLog},
		Pending: []listing.SessionSummary{summary("s1", models.SessionStatusPending)},
	}
	var asked bool
	r := newRouter(t, Deps{Sessions: fakeSessions{ListFn: func(_ context.Context, withMessages bool) (listing.Buckets, error) {
		asked = withMessages
		return buckets, nil
	}}})

	rec := do(r, http.MethodGet, "/api/sessions?flat=true&withMessages=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, asked)

	var body struct {
		Sessions []struct {
			ID       string `json:"id"`
			Messages []struct {
				ID    string `json:"id"`
				Parts []struct {
					Kind string `json:"kind"`
				} `json:"parts"`
			} `json:"messages"`
		} `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Sessions, 2)
	require.Len(t, body.Sessions[0].Messages, 2)
	assert.Equal(t, "m1", body.Sessions[0].Messages[0].ID)
	require.Len(t, body.Sessions[0].Messages[1].Parts, 1)
	assert.Equal(t, "image", body.Sessions[0].Messages[1].Parts[0].Kind)
	assert.NotNil(t, body.Sessions[1].Messages, "an empty log renders as []")
	assert.Empty(t, body.Sessions[1].Messages)
}

func TestListUserSessions(t *testing.T) {
	detail := service.SessionDetail{
		Session:  models.HelpSession{ID: "s1", UserID: "u1", Status: models.SessionStatusPending, CreatedAt: now, UpdatedAt: now},
		Messages: []models.Message{{ID: "m1", HelpSessionID: "s1", Content: "hello", CreatedAt: now}},
	}
	r := newRouter(t, Deps{Sessions: fakeSessions{ListByUserFn: func(_ context.Context, userID string, withMessages bool) ([]service.SessionDetail, error) {
		if userID != "u1" {
			return nil, apperr.NotFound("User")
		}
		if !withMessages {
			return []service.SessionDetail{{Session: detail.Session}}, nil
		}
		return []service.SessionDetail{detail}, nil
	}}})

	t.Run("without messages", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/api/users/u1/sessions", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":"s1"`)
		assert.NotContains(t, rec.Body.String(), `"messages"`)
	})

	t.Run("with messages", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/api/users/u1/sessions?withMessages=true", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Sessions []struct {
				ID       string `json:"id"`
				Messages []struct {
					Content string `json:"content"`
				} `json:"messages"`
			} `json:"sessions"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Sessions, 1)
		require.Len(t, body.Sessions[0].Messages, 1)
		assert.Equal(t, "hello", body.Sessions[0].Messages[0].Content)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/api/users/ghost/sessions", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not_found", errorCode(t, rec))
	})
}

func TestGetSessionDecodesImageParts(t *testing.T) {
	r := newRouter(t, Deps{Sessions: fakeSessions{GetWithMessagesFn: func(_ context.Context, id string) (service.SessionDetail, error) {
		if id != "s1" {
			return service.SessionDetail{}, apperr.NotFound("Help session")
		}
		return service.SessionDetail{
			Session: models.HelpSession{ID: "s1", Status: models.SessionStatusOpen},
			Messages: []models.Message{
				{ID: "m1", HelpSessionID: "s1", Content: "[Image: https://cdn.eldrix.com/a.png] look", IsAdmin: true, Read: true, CreatedAt: now},
			},
		}, nil
	}}})

	rec := do(r, http.MethodGet, "/api/sessions/s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Messages []struct {
			Parts []struct {
				Kind string `json:"kind"`
				Text string `json:"text"`
				URL  string `json:"url"`
			} `json:"parts"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Messages, 1)
	parts := body.Messages[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "image", parts[0].Kind)
	assert.Equal(t, "https://cdn.eldrix.com/a.png", parts[0].URL)
	assert.Equal(t, "look", parts[1].Text)

	rec = do(r, http.MethodGet, "/api/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))
}

func TestPostMessage(t *testing.T) {
	r := newRouter(t, Deps{Messages: fakeMessages{AppendFn: func(_ context.Context, sessionID, body string, isAdmin bool) (models.Message, error) {
		if sessionID == "closed" {
			return models.Message{}, apperr.ErrSessionClosed
		}
		assert.True(t, isAdmin)
		return models.Message{ID: "m1", HelpSessionID: sessionID, Content: body, IsAdmin: true, Read: true, CreatedAt: now}, nil
	}}})

	rec := do(r, http.MethodPost, "/api/sessions/s1/messages", map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code)
	msg := decode(t, rec)["message"].(map[string]any)
	assert.Equal(t, "hello", msg["content"])
	assert.Equal(t, true, msg["isAdmin"])

	rec = do(r, http.MethodPost, "/api/sessions/closed/messages", map[string]string{"content": "hello"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "session_closed", errorCode(t, rec))
}

func TestCloseSession(t *testing.T) {
	var gotRecap string
	r := newRouter(t, Deps{Sessions: fakeSessions{CloseFn: func(_ context.Context, id, recap string) (service.CloseResult, error) {
		if id == "done" {
			return service.CloseResult{}, apperr.ErrAlreadyClosed
		}
		gotRecap = recap
		return service.CloseResult{
			Session:     models.HelpSession{ID: id, Status: models.SessionStatusCompleted, Completed: true},
			Recap:       "Session closed by admin.",
			Title:       "Printer",
			RecapSource: service.RecapFallback,
		}, nil
	}}})

	t.Run("without a body", func(t *testing.T) {
		rec := do(r, http.MethodPost, "/api/sessions/s1/close", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "fallback", body["recapSource"])
		assert.Equal(t, true, body["session"].(map[string]any)["completed"])
		assert.Empty(t, gotRecap)
	})

	t.Run("with a custom recap", func(t *testing.T) {
		rec := do(r, http.MethodPost, "/api/sessions/s1/close", map[string]string{"recap": "Fixed wifi"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Fixed wifi", gotRecap)
	})

	t.Run("already closed", func(t *testing.T) {
		rec := do(r, http.MethodPost, "/api/sessions/done/close", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "already_closed", errorCode(t, rec))
	})
}

func TestReadReceipts(t *testing.T) {
	r := newRouter(t, Deps{Messages: fakeMessages{
		MarkSessionReadFn: func(context.Context, string) (int64, error) { return 3, nil },
		MarkReadFn: func(_ context.Context, id string) error {
			if id == "missing" {
				return apperr.NotFound("Message")
			}
			return nil
		},
	}})

	rec := do(r, http.MethodPost, "/api/sessions/s1/read", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decode(t, rec)["updated"])

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/api/messages/m1/read", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/api/messages/missing/read", nil).Code)
}

func TestCreateUser(t *testing.T) {
	r := newRouter(t, Deps{Users: fakeUsers{CreateFn: func(_ context.Context, in service.CreateUserInput) (service.CreateUserResult, error) {
		if in.Email == "taken@example.com" {
			return service.CreateUserResult{}, apperr.ErrConflict.WithMessage("User with this email already exists")
		}
		return service.CreateUserResult{
			User:      models.User{ID: "u1", Name: in.Name, Email: in.Email, PasswordHash: []byte("secret-hash")},
			SetupLink: "https://app.eldrix.com/setup?uid=u1",
			SMSQueued: true,
		}, nil
	}}})

	rec := do(r, http.MethodPost, "/api/users", map[string]string{"name": "Ada", "email": "ada@example.com", "phone": "+15550100", "tempPassword": "temporary1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
	body := decode(t, rec)
	assert.Equal(t, true, body["notifications"].(map[string]any)["smsQueued"])

	rec = do(r, http.MethodPost, "/api/users", map[string]string{"name": "Ada", "email": "taken@example.com", "phone": "+15550100", "tempPassword": "temporary1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", errorCode(t, rec))
}

func TestUploadImage(t *testing.T) {
	var got service.UploadInput
	r := newRouter(t, Deps{Uploads: fakeUploads{UploadImageFn: func(_ context.Context, in service.UploadInput) (service.UploadResult, error) {
		got = in
		msg := models.Message{ID: "m1", HelpSessionID: in.SessionID, Content: "[Image: https://cdn/x.png]", IsAdmin: true}
		return service.UploadResult{URL: "https://cdn/x.png", Key: "eldrix/admin-x.png", MIME: "image/png", Size: 4, Message: &msg}, nil
	}}})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "x.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("data"))
	require.NoError(t, mw.WriteField("sessionId", "s1"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, int64(4), got.Size)
	body := decode(t, rec)
	assert.Equal(t, "https://cdn/x.png", body["image"].(map[string]any)["url"])
	assert.NotNil(t, body["message"])

	rec = do(r, http.MethodPost, "/api/uploads/images", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadStorageFailureIsBadGateway(t *testing.T) {
	r := newRouter(t, Deps{Uploads: fakeUploads{ListRecordingsFn: func(context.Context) ([]storage.ObjectInfo, error) {
		return nil, apperr.Upstream("List recordings", io.ErrUnexpectedEOF)
	}}})

	rec := do(r, http.MethodGet, "/api/recordings", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "upstream_failure", errorCode(t, rec))
}

func TestUnknownErrorIsInternal(t *testing.T) {
	r := newRouter(t, Deps{Users: fakeUsers{ListFn: func(context.Context) ([]models.User, error) {
		return nil, io.ErrClosedPipe
	}}})

	rec := do(r, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", errorCode(t, rec))
	assert.NotContains(t, rec.Body.String(), "closed pipe")
}

func TestBridgeInboundSMS(t *testing.T) {
	var gotAdmin *bool
	r := newRouter(t, Deps{Messages: fakeMessages{AppendFn: func(_ context.Context, sessionID, body string, isAdmin bool) (models.Message, error) {
		gotAdmin = &isAdmin
		return models.Message{ID: "m9", HelpSessionID: sessionID, Content: body, CreatedAt: now}, nil
	}}})

	body := []byte(`{"sessionId":"s1","content":"it works now"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/bridge/sms", bytes.NewReader(body))
	security.SignRequest(req, bridgeSecret, body, time.Now(), "nonce-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, gotAdmin)
	assert.False(t, *gotAdmin)

	unsigned := httptest.NewRequest(http.MethodPost, "/api/bridge/sms", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, unsigned)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	r := newRouter(t, Deps{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	r = newRouter(t, Deps{DB: okPinger{err: io.EOF}})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "error", decode(t, rec)["database"])
}
