package service

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/product-api/internal/core/domain"
	"github.com/99minutos/product-api/internal/pkg/metrics"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

func passwordTooLong() error {
	return domain.NewValidationError(domain.Violation{
		Field:   "password",
		Message: "The password must be at most 72 bytes.",
	})
}

// BcryptHasher implements ports.PasswordHasher. Every digest embeds its own
// random salt and the cost it was produced with.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, falling back to
// bcrypt.DefaultCost when cost is outside bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) ([]byte, error) {
	if len(plaintext) > MaxPasswordBytes {
		return nil, passwordTooLong()
	}

	start := time.Now()
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	metrics.PasswordHashDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, passwordTooLong()
		}
		return nil, err
	}
	return digest, nil
}

// Verify never distinguishes a corrupt digest from a wrong password; both
// are a mismatch. The comparison inside bcrypt is constant time.
//
// bcrypt only reads the first MaxPasswordBytes of its input, so a longer
// plaintext can never match a digest produced by Hash. It still pays for one
// comparison so its rejection takes as long as a wrong password.
func (h *BcryptHasher) Verify(plaintext string, digest []byte) bool {
	if len(digest) == 0 {
		return false
	}
	if len(plaintext) > MaxPasswordBytes {
		_ = bcrypt.CompareHashAndPassword(digest, []byte(plaintext[:MaxPasswordBytes]))
		return false
	}
	return bcrypt.CompareHashAndPassword(digest, []byte(plaintext)) == nil
}
