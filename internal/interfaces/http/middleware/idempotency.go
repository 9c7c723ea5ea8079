package middleware

import (
	"net/http"
	"time"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxIdempotencyKeyLength = 200

// IdempotencyKey rejects a repeated Idempotency-Key on POST requests with
// 409 DUPLICATE_REQUEST. The key is released when the request fails so the
// client can retry it. Requests without the header pass through, and a
// failing store lets the request through rather than blocking writes.
func IdempotencyKey(store shared.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	if store == nil {
		return passThrough
	}
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		ctx := c.Request.Context()
		storeKey := "http:" + c.FullPath() + ":" + key
		claimed, err := store.Claim(ctx, storeKey, ttl)
		if err != nil {
			log.Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(
				shared.CodeDuplicateRequest,
				"A request with this Idempotency-Key was already processed",
				GetRequestID(c),
			))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(ctx, storeKey); err != nil {
				log.Warn("Failed to release idempotency key", zap.String("key", storeKey), zap.Error(err))
			}
		}
	}
}
