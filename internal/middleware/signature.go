package middleware

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"eldrix/admin/internal/apperr"
	"eldrix/admin/internal/security"
)

const nonceTTL = 5 * time.Minute

// BridgeSignature authenticates callbacks from the SMS bridge: HMAC over the
// request, a date within maxSkew and a nonce that has not been seen before.
func BridgeSignature(secret string, maxSkew time.Duration, redisClient *redis.Client) gin.HandlerFunc {
	if maxSkew <= 0 {
		maxSkew = 5 * time.Minute
	}

	return func(c *gin.Context) {
		date, nonce, signature, err := security.ExtractSignatureHeaders(c)
		if err != nil {
			abort(c, apperr.ErrUnauthorized.WithMessage("Signature required"))
			return
		}

		requestTime, err := time.Parse(time.RFC3339, date)
		if err != nil {
			abort(c, apperr.ErrUnauthorized.WithMessage("Invalid signature date"))
			return
		}
		if skew := time.Since(requestTime); skew > maxSkew || skew < -maxSkew {
			abort(c, apperr.ErrUnauthorized.WithMessage("Request expired"))
			return
		}

		rawBody, err := c.GetRawData()
		if err != nil {
			abort(c, apperr.Validation("body", "unreadable request body"))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(rawBody))

		if !security.ValidateSignature(secret, signature, c.Request.Method, c.Request.URL.Path, rawBody, date, nonce) {
			abort(c, apperr.ErrUnauthorized.WithMessage("Invalid signature"))
			return
		}

		fresh, err := redisClient.SetNX(c.Request.Context(), fmt.Sprintf("sig:bridge:%s", nonce), "1", nonceTTL).Result()
		if err != nil {
			abort(c, apperr.ErrInternal.Wrap(err))
			return
		}
		if !fresh {
			abort(c, apperr.ErrUnauthorized.WithMessage("Replay detected"))
			return
		}

		c.Next()
	}
}
