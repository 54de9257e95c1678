package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"eldrix/admin/internal/config"
)

const (
	SessionCookieName = "eldrix_admin"

	sessionAuthenticatedKey = "authenticated"
	sessionUsernameKey      = "username"
	adminContextKey         = "admin_username"
)

func NewSessionStore(cfg config.SecurityConfig, production bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   production,
		SameSite: http.SameSiteStrictMode,
	}
	return store
}

// StartAdminSession marks the caller's cookie session as authenticated.
func StartAdminSession(c *gin.Context, store sessions.Store, username string) error {
	session, _ := store.Get(c.Request, SessionCookieName)
	session.Values[sessionAuthenticatedKey] = true
	session.Values[sessionUsernameKey] = username
	return session.Save(c.Request, c.Writer)
}

func EndAdminSession(c *gin.Context, store sessions.Store) error {
	session, _ := store.Get(c.Request, SessionCookieName)
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	return session.Save(c.Request, c.Writer)
}

func sessionUsername(c *gin.Context, store sessions.Store) (string, bool) {
	session, err := store.Get(c.Request, SessionCookieName)
	if err != nil {
		return "", false
	}
	if ok, _ := session.Values[sessionAuthenticatedKey].(bool); !ok {
		return "", false
	}
	username, _ := session.Values[sessionUsernameKey].(string)
	return username, true
}

// AdminUsername returns the admin resolved by AdminAuth.
func AdminUsername(c *gin.Context) string {
	return c.GetString(adminContextKey)
}
