package middleware

import (
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow/internal/constants"
	apierrors "github.com/yukikurage/taskflow/internal/errors"
	applog "github.com/yukikurage/taskflow/internal/logger"
	"github.com/yukikurage/taskflow/internal/policy"
	"github.com/yukikurage/taskflow/internal/services"
	"go.uber.org/zap"
)

// TokenParser verifies a bearer token and returns the user it was issued for.
type TokenParser interface {
	ParseToken(token string) (uint64, error)
}

// ActorResolver loads the authorization context of a user.
type ActorResolver interface {
	ResolveActor(userID uint64) (policy.Actor, error)
}

// RequireAuth checks if the user is authenticated via session, falling back
// to an Authorization: Bearer token when tokens is not nil.
func RequireAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)

		if userID == nil && tokens != nil {
			if raw, ok := bearerToken(c); ok {
				id, err := tokens.ParseToken(raw)
				if err != nil {
					apierrors.Unauthorized(c, "Invalid or expired token")
					c.Abort()
					return
				}
				userID = id
			}
		}

		if userID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// LoadActor resolves the authenticated user's role and relationships once per request.
// It must run after RequireAuth.
func LoadActor(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		actor, err := resolver.ResolveActor(userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				// the account was deleted while the session was alive
				sessions.Default(c).Clear()
				_ = sessions.Default(c).Save()
				apierrors.Unauthorized(c, "")
			} else {
				applog.Log.Error("failed to resolve actor", zap.Uint64("user_id", userID), zap.Error(err))
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, actor)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetActor retrieves the actor stored by LoadActor
func GetActor(c *gin.Context) (policy.Actor, bool) {
	v, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return policy.Actor{}, false
	}
	actor, ok := v.(policy.Actor)
	return actor, ok
}
