package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/viralforge/event-portal/internal/domain"
)

// bcrypt reads at most 72 bytes of input; anything longer would silently
// collide with its truncated prefix.
const maxPasswordBytes = 72

// BcryptHasher hashes portal passwords with bcrypt. The cost is fixed at
// construction so every account in a deployment pays the same work factor.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher at the given cost, falling back to the
// library default when the configured value is unusable.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", fmt.Errorf("%w: password exceeds %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	if len(password) > maxPasswordBytes {
		return domain.ErrInvalidCredentials
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
