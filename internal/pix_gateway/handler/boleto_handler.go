package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pix-transfer-service/internal/domain/boleto"
	"github.com/pix-transfer-service/internal/pix_gateway/service"
)

// BoletoHandler handles HTTP requests for boleto operations
type BoletoHandler struct {
	boletoService service.BoletoService
	logger        *slog.Logger
}

// NewBoletoHandler creates a new boleto handler
func NewBoletoHandler(logger *slog.Logger, boletoService service.BoletoService) *BoletoHandler {
	return &BoletoHandler{
		boletoService: boletoService,
		logger:        logger,
	}
}

// Create registers a paid boleto. Settlement happens asynchronously after the
// clearing window, so the response is always PROCESSING.
func (h *BoletoHandler) Create(c *gin.Context) {
	var req RegisterBoletoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	b, err := h.boletoService.RegisterPayment(c.Request.Context(), req.ExternalID, req.Amount, req.WebhookURL)
	if err != nil {
		if errors.Is(err, boleto.ErrInvalidAmount) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to register boleto", "external_id", req.ExternalID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapBoletoToResponse(b))
}

// GetByID retrieves boleto details by its ID, returns 404 if not found
func (h *BoletoHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid boleto ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid boleto ID")
		return
	}

	b, err := h.boletoService.GetBoletoByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get boleto", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	if b == nil {
		RespondNotFound(c, "Boleto not found")
		return
	}

	RespondOK(c, mapBoletoToResponse(b))
}

// mapBoletoToResponse maps a boleto to a response DTO
func mapBoletoToResponse(b *boleto.Boleto) BoletoResponse {
	response := BoletoResponse{
		ID:         b.ID.String(),
		ExternalID: b.ExternalID,
		Amount:     b.Amount,
		Status:     string(b.Status),
		WebhookURL: b.WebhookURL,
		CreatedAt:  b.CreatedAt.Format(time.RFC3339),
	}

	if b.PaidAt != nil {
		response.PaidAt = b.PaidAt.Format(time.RFC3339)
	}
	if b.ConfirmedAt != nil {
		response.ConfirmedAt = b.ConfirmedAt.Format(time.RFC3339)
	}

	return response
}
