package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gridcert/exchange/exchangeService/internal/domain/models"
	"github.com/gridcert/exchange/exchangeService/internal/http/dto"
	"github.com/gridcert/exchange/exchangeService/internal/services/ledger"
)

type LedgerService interface {
	Balances(ctx context.Context, userID uuid.UUID) (ledger.AccountBalances, error)
	UserTransfers(ctx context.Context, userID uuid.UUID) ([]models.Transfer, error)
	CreateDeposit(ctx context.Context, request ledger.DepositRequest) (models.Transfer, error)
	ConfirmTransfer(ctx context.Context, transactionHash string, blockNumber int64) (models.Transfer, error)
	FailTransfer(ctx context.Context, transactionHash string) (models.Transfer, error)
	RequestWithdrawal(ctx context.Context, request ledger.WithdrawalRequest) (models.Transfer, error)
}

type LedgerHandler struct {
	ledger LedgerService
}

func NewLedgerHandler(ledger LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// Account returns the caller's deposit address and balances, creating the
// account on first use.
func (h *LedgerHandler) Account(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	balances, err := h.ledger.Balances(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AccountFromDomain(balances))
}

func (h *LedgerHandler) Transfers(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	transfers, err := h.ledger.UserTransfers(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TransfersFromDomain(transfers))
}

func (h *LedgerHandler) Withdraw(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var request dto.CreateWithdrawal
	if !bindJSON(c, &request, false) {
		return
	}
	if err := request.Validate(); err != nil {
		writeBadRequest(c, err)
		return
	}

	transfer, err := h.ledger.RequestWithdrawal(c.Request.Context(), request.ToDomain(userID))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TransferFromDomain(transfer))
}

// Deposit is called by the chain watcher, not by users.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	var request dto.CreateDeposit
	if !bindJSON(c, &request, false) {
		return
	}
	if err := request.Validate(); err != nil {
		writeBadRequest(c, err)
		return
	}

	transfer, err := h.ledger.CreateDeposit(c.Request.Context(), request.ToDomain())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TransferFromDomain(transfer))
}

func (h *LedgerHandler) Confirm(c *gin.Context) {
	var request dto.ConfirmTransfer
	if !bindJSON(c, &request, false) {
		return
	}
	if err := request.Validate(); err != nil {
		writeBadRequest(c, err)
		return
	}

	transfer, err := h.ledger.ConfirmTransfer(c.Request.Context(), request.TransactionHash, request.BlockNumber)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TransferFromDomain(transfer))
}

func (h *LedgerHandler) Fail(c *gin.Context) {
	var request dto.FailTransfer
	if !bindJSON(c, &request, false) {
		return
	}
	if err := request.Validate(); err != nil {
		writeBadRequest(c, err)
		return
	}

	transfer, err := h.ledger.FailTransfer(c.Request.Context(), request.TransactionHash)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TransferFromDomain(transfer))
}
