package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridcert/exchange/exchangeService/internal/domain/product"
	serviceErrors "github.com/gridcert/exchange/shared/errors/service"
	zapLogger "github.com/gridcert/exchange/shared/logger/zap"
	"github.com/gridcert/exchange/shared/middleware/userid"
)

type errorResponse struct {
	Error     string `json:"error"`
	Dimension string `json:"dimension,omitempty"`
}

func writeBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// writeServiceError maps service errors to HTTP statuses. Unknown errors
// are logged and reported as 500 without details.
func writeServiceError(c *gin.Context, err error) {
	var validationErr *product.ValidationError
	if errors.As(err, &validationErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
			Error:     validationErr.Error(),
			Dimension: validationErr.Dimension,
		})
		return
	}

	switch {
	case errors.Is(err, serviceErrors.ErrInvalidOrder),
		errors.Is(err, serviceErrors.ErrOrderRejected),
		errors.Is(err, serviceErrors.ErrInsufficientBalance),
		errors.Is(err, serviceErrors.ErrAssetNotAvailable),
		errors.Is(err, serviceErrors.ErrInvalidTransfer):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: publicMessage(err)})

	case errors.Is(err, serviceErrors.ErrNotOrderOwner):
		c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Error: serviceErrors.ErrNotOrderOwner.Error()})

	case errors.Is(err, serviceErrors.ErrOrderNotFound),
		errors.Is(err, serviceErrors.ErrAccountNotFound),
		errors.Is(err, serviceErrors.ErrTransferNotFound),
		errors.Is(err, serviceErrors.ErrPublicationNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: publicMessage(err)})

	case errors.Is(err, serviceErrors.ErrTransferExists):
		c.AbortWithStatusJSON(http.StatusConflict, errorResponse{Error: serviceErrors.ErrTransferExists.Error()})

	case errors.Is(err, serviceErrors.ErrRateLimitExceeded):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: serviceErrors.ErrRateLimitExceeded.Error()})

	case errors.Is(err, serviceErrors.ErrLedgerUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorResponse{Error: serviceErrors.ErrLedgerUnavailable.Error()})

	case errors.Is(err, context.DeadlineExceeded):
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, errorResponse{Error: "request timed out"})

	default:
		zapLogger.Error(c.Request.Context(), "request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// publicMessage strips the "Service.Op: " prefixes added on the way up.
func publicMessage(err error) string {
	for _, sentinel := range []error{
		serviceErrors.ErrOrderRejected,
		serviceErrors.ErrInvalidOrder,
		serviceErrors.ErrInsufficientBalance,
		serviceErrors.ErrAssetNotAvailable,
		serviceErrors.ErrInvalidTransfer,
		serviceErrors.ErrOrderNotFound,
		serviceErrors.ErrAccountNotFound,
		serviceErrors.ErrTransferNotFound,
		serviceErrors.ErrPublicationNotFound,
	} {
		if errors.Is(err, sentinel) {
			return detail(err, sentinel)
		}
	}
	return err.Error()
}

// detail cuts everything before the sentinel's text, so
// "Service.CreateAsk: order rejected: no liquidity" becomes
// "order rejected: no liquidity".
func detail(err, sentinel error) string {
	message := err.Error()
	if i := strings.Index(message, sentinel.Error()); i >= 0 {
		return message[i:]
	}
	return sentinel.Error()
}

// bindJSON decodes the body into request. An empty body leaves request at
// its zero value when allowEmpty is set.
func bindJSON(c *gin.Context, request any, allowEmpty bool) bool {
	err := c.ShouldBindJSON(request)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}

	writeBadRequest(c, errors.New("malformed request body"))
	return false
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeBadRequest(c, errors.New("id must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := userid.FromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing or invalid " + userid.HeaderKey})
		return uuid.Nil, false
	}
	return userID, true
}
