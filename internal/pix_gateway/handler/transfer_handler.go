package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pix-transfer-service/internal/domain/shared"
	"github.com/pix-transfer-service/internal/domain/transaction"
	"github.com/pix-transfer-service/internal/pix_gateway/middleware"
	"github.com/pix-transfer-service/internal/pix_gateway/service"
)

// TransferHandler handles HTTP requests for transfer operations
type TransferHandler struct {
	transferService service.TransferService
	logger          *slog.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(logger *slog.Logger, transferService service.TransferService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
		logger:          logger,
	}
}

// Create initiates a transfer and runs the saga to a terminal state before
// responding. 201 for a newly completed transfer, 200 for an idempotent
// replay, 422 when a ledger step declined, 500 when compensation failed.
func (h *TransferHandler) Create(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	sourceAccountID, err := uuid.Parse(req.SourceAccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid source account ID")
		return
	}
	destinationAccountID, err := uuid.Parse(req.DestinationAccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid destination account ID")
		return
	}

	transferRequest := &shared.TransferRequest{
		SourceAccountID:      sourceAccountID,
		DestinationAccountID: destinationAccountID,
		Amount:               req.Amount,
		PixKey:               req.PixKey,
		Description:          req.Description,
		IdempotencyKey:       req.IdempotencyKey,
		CorrelationID:        middleware.GetCorrelationID(c),
		Timestamp:            time.Now(),
	}

	outcome, err := h.transferService.CreateTransfer(c.Request.Context(), transferRequest)
	if err != nil {
		if isValidationError(err) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create transfer", "error", err)
		RespondInternalError(c)
		return
	}

	response := mapTransactionToResponse(outcome.Transaction)

	if outcome.ErrorKind != "" && !outcome.Duplicate {
		RespondTransferFailure(c, outcome.ErrorKind, outcome.Message, response)
		return
	}

	if outcome.Duplicate {
		RespondOK(c, response)
		return
	}

	RespondCreated(c, response)
}

// GetByID retrieves transfer details by its ID, returns 404 if not found
func (h *TransferHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transfer ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transfer ID")
		return
	}

	txn, err := h.transferService.GetTransferByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get transfer", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	if txn == nil {
		RespondNotFound(c, "Transfer not found")
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// GetByAccountID retrieves paginated transfer history for an account
func (h *TransferHandler) GetByAccountID(c *gin.Context) {
	accountIDParam := c.Param("id")
	accountID, err := uuid.Parse(accountIDParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "account_id", accountIDParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	txns, total, err := h.transferService.GetTransfersByAccountID(
		c.Request.Context(),
		accountID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to get transfers", "account_id", accountIDParam, "error", err)
		RespondInternalError(c)
		return
	}

	var transfers []TransferResponse
	for _, txn := range txns {
		transfers = append(transfers, mapTransactionToResponse(txn))
	}

	RespondWithPaginatedData(c, http.StatusOK, transfers, pagination.Page, pagination.PerPage, int(total))
}

// isValidationError reports whether the error is one of the request shape
// checks that should map to 400 rather than 500
func isValidationError(err error) bool {
	return errors.Is(err, shared.ErrInvalidAmount) ||
		errors.Is(err, shared.ErrSameAccount) ||
		errors.Is(err, shared.ErrMissingPixKey) ||
		errors.Is(err, shared.ErrPixKeyTooLong) ||
		errors.Is(err, shared.ErrMissingIdempotency) ||
		errors.Is(err, shared.ErrDescriptionTooLong)
}

// mapTransactionToResponse maps a transaction to a transfer response DTO
func mapTransactionToResponse(txn *transaction.PixTransaction) TransferResponse {
	response := TransferResponse{
		TransactionID:        txn.ID.String(),
		SourceAccountID:      txn.SourceAccountID.String(),
		DestinationAccountID: txn.DestinationAccountID.String(),
		Amount:               txn.Amount,
		PixKey:               txn.PixKey,
		Description:          txn.Description,
		Status:               string(txn.Status),
		FailureReason:        txn.FailureReason,
		CreatedAt:            txn.CreatedAt.Format(time.RFC3339),
	}

	if txn.DebitedAt != nil {
		response.DebitedAt = txn.DebitedAt.Format(time.RFC3339)
	}
	if txn.CompletedAt != nil {
		response.CompletedAt = txn.CompletedAt.Format(time.RFC3339)
	}

	return response
}
