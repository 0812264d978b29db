package handler

// CreateTransferRequest represents a request to initiate a transfer
type CreateTransferRequest struct {
	SourceAccountID      string `json:"source_account_id" binding:"required,uuid"`
	DestinationAccountID string `json:"destination_account_id" binding:"required,uuid"`
	Amount               int64  `json:"amount" binding:"required,gt=0"`
	PixKey               string `json:"pix_key" binding:"required,max=140"`
	Description          string `json:"description" binding:"max=255"`
	IdempotencyKey       string `json:"idempotency_key" binding:"required"`
}

// TransferResponse represents a transfer in API responses
type TransferResponse struct {
	TransactionID        string `json:"transaction_id"`
	SourceAccountID      string `json:"source_account_id"`
	DestinationAccountID string `json:"destination_account_id"`
	Amount               int64  `json:"amount"`
	PixKey               string `json:"pix_key"`
	Description          string `json:"description,omitempty"`
	Status               string `json:"status"`
	FailureReason        string `json:"failure_reason,omitempty"`
	CreatedAt            string `json:"created_at"`
	DebitedAt            string `json:"debited_at,omitempty"`
	CompletedAt          string `json:"completed_at,omitempty"`
}

// RegisterBoletoRequest represents a paid boleto registration
type RegisterBoletoRequest struct {
	ExternalID string `json:"external_id" binding:"required"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	WebhookURL string `json:"webhook_url" binding:"omitempty,url"`
}

// BoletoResponse represents a boleto in API responses
type BoletoResponse struct {
	ID          string `json:"id"`
	ExternalID  string `json:"external_id"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	WebhookURL  string `json:"webhook_url,omitempty"`
	PaidAt      string `json:"paid_at,omitempty"`
	ConfirmedAt string `json:"confirmed_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
