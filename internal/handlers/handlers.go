package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eldrix/admin/internal/apperr"
	"eldrix/admin/internal/config"
	"eldrix/admin/internal/listing"
	"eldrix/admin/internal/middleware"
	"eldrix/admin/internal/models"
	"eldrix/admin/internal/security"
	"eldrix/admin/internal/service"
	"eldrix/admin/internal/storage"
)

type SessionAPI interface {
	Create(ctx context.Context, input service.CreateSessionInput) (models.HelpSession, error)
	GetWithMessages(ctx context.Context, id string) (service.SessionDetail, error)
	List(ctx context.Context, withMessages bool) (listing.Buckets, error)
	ListByUser(ctx context.Context, userID string, withMessages bool) ([]service.SessionDetail, error)
	Close(ctx context.Context, id, recap string) (service.CloseResult, error)
	Delete(ctx context.Context, id string) error
}

type MessageAPI interface {
	Append(ctx context.Context, sessionID, body string, isAdmin bool) (models.Message, error)
	MarkSessionRead(ctx context.Context, sessionID string) (int64, error)
	MarkRead(ctx context.Context, messageID string) error
}

type UserAPI interface {
	Create(ctx context.Context, input service.CreateUserInput) (service.CreateUserResult, error)
	Get(ctx context.Context, id string) (service.UserDetail, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}

type UploadAPI interface {
	UploadImage(ctx context.Context, input service.UploadInput) (service.UploadResult, error)
	ListRecordings(ctx context.Context) ([]storage.ObjectInfo, error)
}

type AuthAPI interface {
	Login(ctx context.Context, input service.LoginInput) (service.LoginResult, error)
	ValidateToken(token string) (*security.AdminClaims, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Log          zerolog.Logger
	Config       *config.AppConfig
	Sessions     SessionAPI
	Messages     MessageAPI
	Users        UserAPI
	Uploads      UploadAPI
	Auth         AuthAPI
	SessionStore sessions.Store
	DB           Pinger
	Cache        *redis.Client
}

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	sessions     SessionAPI
	messages     MessageAPI
	users        UserAPI
	uploads      UploadAPI
	auth         AuthAPI
	sessionStore sessions.Store
	db           Pinger
	cache        *redis.Client
}

func NewHandlerSet(d Deps) HandlerSet {
	return HandlerSet{
		log:          d.Log,
		cfg:          d.Config,
		sessions:     d.Sessions,
		messages:     d.Messages,
		users:        d.Users,
		uploads:      d.Uploads,
		auth:         d.Auth,
		sessionStore: d.SessionStore,
		db:           d.DB,
		cache:        d.Cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := router.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)

	bridge := router.Group("/bridge")
	bridge.Use(middleware.BridgeSignature(h.cfg.Bridge.Secret, h.cfg.Bridge.MaxSkew, h.cache))
	bridge.POST("/sms", h.BridgeInboundSMS)

	admin := router.Group("")
	admin.Use(middleware.AdminAuth(h.sessionStore, h.auth))
	{
		admin.GET("/sessions", h.ListSessions)
		admin.POST("/sessions", h.CreateSession)
		admin.GET("/sessions/:id", h.GetSession)
		admin.DELETE("/sessions/:id", h.DeleteSession)
		admin.POST("/sessions/:id/messages", h.PostMessage)
		admin.POST("/sessions/:id/read", h.MarkSessionRead)
		admin.POST("/sessions/:id/close", h.CloseSession)
		admin.POST("/messages/:id/read", h.MarkMessageRead)

		admin.GET("/users", h.ListUsers)
		admin.POST("/users", h.CreateUser)
		admin.GET("/users/:id", h.GetUser)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.GET("/users/:id/sessions", h.ListUserSessions)

		admin.POST("/uploads/images", h.UploadImage)
		admin.GET("/recordings", h.ListRecordings)
	}
}

// respondError renders err as {"error": {...}}. Anything that is not an
// *apperr.Error becomes a 500 and is logged with the request id.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.log.Error().
			Err(err).
			Str("path", c.FullPath()).
			Str("request_id", middleware.GetRequestID(c)).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(appErr.Status, gin.H{"error": appErr})
}

func invalidBody(err error) error {
	return apperr.ErrValidation.WithMessage("Invalid request body").WithDetails(map[string]string{"error": err.Error()})
}
