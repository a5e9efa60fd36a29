// Package security adapts zap to the domain logging port and scrubs
// payout credentials from log output.
package security

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kurniadi/booking-service/internal/domain/ports"
)

// Field keys whose values must never reach the logs in full. Account
// numbers keep their last four digits for support lookups; everything
// else is fully masked.
var sensitiveKeys = map[string]bool{
	"account_number": true,
	"api_key":        true,
	"authorization":  true,
	"secret":         true,
}

// ZapLoggerAdapter implements ports.Logger on a zap.Logger.
type ZapLoggerAdapter struct {
	logger *zap.Logger
}

func NewZapLogger(logger *zap.Logger) *ZapLoggerAdapter {
	return &ZapLoggerAdapter{logger: logger}
}

func (z *ZapLoggerAdapter) Debug(msg string, fields ...ports.Field) {
	z.logger.Debug(msg, convertFields(fields)...)
}

func (z *ZapLoggerAdapter) Info(msg string, fields ...ports.Field) {
	z.logger.Info(msg, convertFields(fields)...)
}

func (z *ZapLoggerAdapter) Warn(msg string, fields ...ports.Field) {
	z.logger.Warn(msg, convertFields(fields)...)
}

func (z *ZapLoggerAdapter) Error(msg string, fields ...ports.Field) {
	z.logger.Error(msg, convertFields(fields)...)
}

func convertFields(fields []ports.Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		if sensitiveKeys[f.Key] {
			zapFields[i] = zap.String(f.Key, Mask(fmt.Sprint(f.Value)))
			continue
		}
		zapFields[i] = zap.Any(f.Key, f.Value)
	}
	return zapFields
}

// Mask hides all but the last four characters of a sensitive value.
// Short values are masked entirely.
func Mask(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
