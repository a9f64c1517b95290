package userid

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	zapLogger "github.com/gridcert/exchange/shared/logger/zap"
)

const (
	HeaderKey  = "X-User-ID"
	contextKey = "userID"
)

// Required rejects requests without a valid X-User-ID header.
func Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(c.GetHeader(HeaderKey))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + HeaderKey})
			return
		}

		c.Set(contextKey, userID)
		ctx := zapLogger.ContextWithUserID(c.Request.Context(), userID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func FromContext(c *gin.Context) (uuid.UUID, bool) {
	value, found := c.Get(contextKey)
	if !found {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}
