package xrequestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	zapLogger "github.com/gridcert/exchange/shared/logger/zap"
)

const HeaderKey = "X-Request-ID"

// Server takes the request id from the incoming header or generates one,
// stores it in the request context and echoes it back.
func Server() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderKey)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := zapLogger.ContextWithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderKey, requestID)

		c.Next()
	}
}
