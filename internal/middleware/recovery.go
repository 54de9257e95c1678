package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"eldrix/admin/internal/apperr"
)

func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("error", r).
					Str("path", c.Request.URL.Path).
					Str("request_id", GetRequestID(c)).
					Msg("panic recovered")
				abort(c, apperr.ErrInternal)
			}
		}()
		c.Next()
	}
}
