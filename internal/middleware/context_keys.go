package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

// actorIDKey stores the acting administrator used for audit fields.
const actorIDKey = contextKey("actorID")

// ActorHeader names the administrator performing the request. It is recorded
// on audit fields only and is not an authentication mechanism.
const ActorHeader = "X-Actor-ID"

// DefaultActor is recorded when no actor header is supplied.
const DefaultActor = "system"

// ActorMiddleware reads the actor header into the request context.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if actor == "" || len(actor) > 100 {
			actor = DefaultActor
		}
		c.Set(string(actorIDKey), actor)
		ctx := context.WithValue(c.Request.Context(), actorIDKey, actor)
		ctx = WithLogger(ctx, GetLoggerFromCtx(ctx).With(slog.String("actor_id", actor)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetActorIDFromContext retrieves the acting administrator from the Gin context.
func GetActorIDFromContext(c *gin.Context) string {
	if v, exists := c.Get(string(actorIDKey)); exists {
		if actor, ok := v.(string); ok && actor != "" {
			return actor
		}
	}
	if actor, ok := c.Request.Context().Value(actorIDKey).(string); ok && actor != "" {
		return actor
	}
	return DefaultActor
}
