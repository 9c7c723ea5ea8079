package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/constructora/backend/internal/infrastructure/auth"
	"github.com/constructora/backend/internal/infrastructure/logger"
	"github.com/constructora/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys and headers used by authentication
const (
	JWTClaimsKey   = "jwt_claims"
	ActorKey       = "actor"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
	DevActorHeader = "X-Actor"
	defaultActor   = "desarrollo"
)

// TokenVerifier validates bearer tokens
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Verifier TokenVerifier
	// Enabled false trusts the X-Actor header; development only
	Enabled   bool
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuth authenticates the request and records the operator name used
// on payments and audit entries.
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		if !cfg.Enabled {
			actor := strings.TrimSpace(c.GetHeader(DevActorHeader))
			if actor == "" {
				actor = defaultActor
			}
			setActor(c, actor)
			c.Next()
			return
		}

		header := c.GetHeader(AuthHeaderKey)
		if !strings.HasPrefix(header, BearerPrefix) || strings.TrimPrefix(header, BearerPrefix) == "" {
			abortUnauthorized(c, cfg.Logger, auth.ErrInvalidToken)
			return
		}
		claims, err := cfg.Verifier.Verify(strings.TrimPrefix(header, BearerPrefix))
		if err != nil {
			abortUnauthorized(c, cfg.Logger, err)
			return
		}

		c.Set(JWTClaimsKey, claims)
		setActor(c, claims.Actor())
		c.Next()
	}
}

func setActor(c *gin.Context, actor string) {
	c.Set(ActorKey, actor)
	ctx, _ := logger.WithActor(c.Request.Context(), logger.FromContext(c.Request.Context()), actor)
	c.Request = c.Request.WithContext(ctx)
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error) {
	log.Warn("JWT authentication failed", zap.Error(err), zap.String("path", c.Request.URL.Path))

	code, message := dto.ErrCodeTokenInvalid, "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		message = "Token is not yet valid"
	case errors.Is(err, auth.ErrMissingActor):
		message = "Token does not carry a user name"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message, GetRequestID(c)))
}

// GetActor returns the authenticated operator name
func GetActor(c *gin.Context) string {
	return c.GetString(ActorKey)
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
