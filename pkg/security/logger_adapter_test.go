package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kurniadi/booking-service/internal/domain/ports"
)

func TestMask(t *testing.T) {
	assert.Equal(t, "****7890", Mask("1234567890"))
	assert.Equal(t, "****", Mask("1234"))
	assert.Equal(t, "****", Mask(""))
}

func TestLoggerRedactsSensitiveFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Info("Disbursement sent",
		ports.String("account_number", "8820194455"),
		ports.String("bank_code", "BCA"),
	)

	entries := logs.All()
	assert.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "****4455", fields["account_number"])
	assert.Equal(t, "BCA", fields["bank_code"])
}

func TestLoggerRedactsAPIKeys(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Warn("Provider call failed", ports.String("api_key", "xnd_development_abc123"))

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "****c123", fields["api_key"])
}
