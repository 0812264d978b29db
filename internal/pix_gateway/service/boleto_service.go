package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pix-transfer-service/internal/domain/boleto"
)

// BoletoServiceImpl implements the BoletoService interface
type BoletoServiceImpl struct {
	boletos boleto.Repository
	logger  *slog.Logger
}

// NewBoletoService creates a new boleto service
func NewBoletoService(logger *slog.Logger, boletos boleto.Repository) BoletoService {
	return &BoletoServiceImpl{
		boletos: boletos,
		logger:  logger,
	}
}

// RegisterPayment records a paid boleto in PROCESSING
func (s *BoletoServiceImpl) RegisterPayment(ctx context.Context, externalID string, amount int64, webhookURL string) (*boleto.Boleto, error) {
	b, err := boleto.NewPaid(externalID, amount, webhookURL)
	if err != nil {
		return nil, err
	}

	if err := s.boletos.Create(ctx, b); err != nil {
		s.logger.Error("Failed to register boleto payment",
			"external_id", externalID,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Boleto payment registered",
		"boleto_id", b.ID.String(),
		"external_id", externalID,
		"amount", amount,
	)
	return b, nil
}

// GetBoletoByID retrieves a boleto by its ID. Returns nil if not found
func (s *BoletoServiceImpl) GetBoletoByID(ctx context.Context, id uuid.UUID) (*boleto.Boleto, error) {
	b, err := s.boletos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, boleto.ErrBoletoNotFound{}) {
			s.logger.Info("Boleto not found", "boleto_id", id.String())
			return nil, nil
		}
		s.logger.Error("Failed to get boleto by ID", "boleto_id", id.String(), "error", err)
		return nil, err
	}
	return b, nil
}
