package reservation

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/kurniadi/booking-service/internal/domain/ports"
)

// codeAlphabet excludes the ambiguous characters 0, O, 1, I and L so
// codes survive being read over the phone or handwritten.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeLength = 10

// GenerateCode draws random 10-character codes until one is free for
// the tenant. The pre-check is best-effort; the unique index on
// (tenant_id, code) is the real guarantee under concurrent creation.
func (s *Service) GenerateCode(ctx context.Context, tenantID uuid.UUID) (string, error) {
	for {
		code, err := randomCode()
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}

		exists, err := s.reservations.CodeExists(ctx, nil, tenantID, code)
		if err != nil {
			return "", fmt.Errorf("check code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}

		s.logger.Debug("reservation code collision, regenerating",
			ports.String("code", code))
	}
}

func randomCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
