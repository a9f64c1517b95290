package recovery

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	zapLogger "github.com/gridcert/exchange/shared/logger/zap"
)

func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				zapLogger.Error(c.Request.Context(), "panic recovered in HTTP handler",
					zap.String("panic", fmt.Sprintf("%v", r)),
					zap.String("path", c.FullPath()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
		}()

		c.Next()
	}
}
