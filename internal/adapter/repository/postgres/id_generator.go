package postgres

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID-based IDs.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

// DigitCodeGenerator generates fixed-length numeric codes from crypto/rand.
// Leading zeros are kept, so every code has exactly length digits.
type DigitCodeGenerator struct {
	length int
	max    *big.Int
}

// NewDigitCodeGenerator creates a generator of length-digit codes.
func NewDigitCodeGenerator(length int) *DigitCodeGenerator {
	return &DigitCodeGenerator{
		length: length,
		max:    new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil),
	}
}

// Generate returns a uniformly random code.
func (g *DigitCodeGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, g.max)
	if err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}

	code := n.String()
	if pad := g.length - len(code); pad > 0 {
		code = strings.Repeat("0", pad) + code
	}

	return code, nil
}
