package requestlog

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	zapLogger "github.com/gridcert/exchange/shared/logger/zap"
)

func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		route := c.Request.Method + " " + c.FullPath()

		zapLogger.Debug(ctx, fmt.Sprintf("Started %s", route))
		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime)
		ctx = c.Request.Context()
		code := c.Writer.Status()

		if len(c.Errors) > 0 || code >= 500 {
			zapLogger.Error(ctx, fmt.Sprintf("Finished %s with code %d (took: %v)", route, code, duration),
				zap.String("errors", c.Errors.String()),
			)
			return
		}

		zapLogger.Info(ctx, fmt.Sprintf("Finished %s with code %d (took: %v)", route, code, duration))
	}
}
