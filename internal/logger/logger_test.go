package logger

import (
	"testing"

	"github.com/pix-transfer-service/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "unknown", ""} {
		cfg := &config.Config{
			Application: config.ApplicationConfig{Name: "pix-transfer-service"},
			Logging:     config.LoggingConfig{Level: level},
		}
		log := NewLogger(cfg)
		assert.NotNil(t, log, "level %q", level)
	}
}
