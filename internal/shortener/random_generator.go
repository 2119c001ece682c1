package shortener

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
)

// Alphabet is the fixed set of characters a generated code is drawn from
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomGenerator draws one cryptographically random byte per character and
// maps it onto Alphabet by modulo. 256 is not a multiple of 62, so the first
// 8 characters of Alphabet are slightly more likely than the rest.
type RandomGenerator struct {
	length int
	source io.Reader
}

// NewRandomGenerator creates a generator producing codes of the given length
func NewRandomGenerator(length int) *RandomGenerator {
	return &RandomGenerator{
		length: length,
		source: rand.Reader,
	}
}

// GenerateShortCode returns a random code of the configured length
func (g *RandomGenerator) GenerateShortCode(ctx context.Context) (string, error) {
	buf := make([]byte, g.length)
	if _, err := io.ReadFull(g.source, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return encode(buf), nil
}

// encode maps each byte onto Alphabet
func encode(buf []byte) string {
	code := make([]byte, len(buf))
	for i, b := range buf {
		code[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(code)
}

// Length returns the configured code length
func (g *RandomGenerator) Length() int {
	return g.length
}

// Type returns the generator type
func (g *RandomGenerator) Type() string {
	return TypeRandom
}

// Ensure RandomGenerator implements Generator interface
var _ Generator = (*RandomGenerator)(nil)
