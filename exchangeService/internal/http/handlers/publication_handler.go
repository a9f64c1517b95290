package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/http/dto"
	"github.com/gridcert/exchange/exchangeService/internal/services/publication"
)

type PublicationService interface {
	Start(ctx context.Context, request publication.Request) (models.Publication, error)
	Get(ctx context.Context, id, userID uuid.UUID) (models.Publication, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) (models.Publication, error)
}

type PublicationHandler struct {
	publications PublicationService
}

func NewPublicationHandler(publications PublicationService) *PublicationHandler {
	return &PublicationHandler{publications: publications}
}

func (h *PublicationHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var request dto.CreatePublication
	if !bindJSON(c, &request, false) {
		return
	}
	if err := request.Validate(); err != nil {
		writeBadRequest(c, err)
		return
	}

	started, err := h.publications.Start(c.Request.Context(), request.ToDomain(userID))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.PublicationFromDomain(started))
}

func (h *PublicationHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	found, err := h.publications.Get(c.Request.Context(), id, userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PublicationFromDomain(found))
}

func (h *PublicationHandler) Cancel(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	cancelled, err := h.publications.Cancel(c.Request.Context(), id, userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PublicationFromDomain(cancelled))
}
