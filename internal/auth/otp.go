package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP produces a fixed-length numeric code from a cryptographically
// secure source. The result is zero-padded so leading zeros survive.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
