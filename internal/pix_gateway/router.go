package pix_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pix-transfer-service/internal/pix_gateway/handler"
	"github.com/pix-transfer-service/internal/pix_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	transferHandler *handler.TransferHandler,
	boletoHandler *handler.BoletoHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Transfer operations
		transfers := v1.Group("/transfers")
		{
			transfers.POST("", transferHandler.Create)
			transfers.GET("/:id", transferHandler.GetByID)
		}

		// Transfer history by account
		accounts := v1.Group("/accounts")
		{
			accounts.GET("/:id/transfers", transferHandler.GetByAccountID)
		}

		// Boleto operations
		boletos := v1.Group("/boletos")
		{
			boletos.POST("", boletoHandler.Create)
			boletos.GET("/:id", boletoHandler.GetByID)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
