package shortener

import (
	"context"
)

// Generator defines the interface for generating candidate short codes.
// Collision handling belongs to the caller.
type Generator interface {
	// GenerateShortCode returns a new candidate code
	GenerateShortCode(ctx context.Context) (string, error)

	// Type returns the type identifier of the generator
	Type() string
}

// Config holds configuration for shortener generators
type Config struct {
	Type       string `json:"type"`        // Generator type, defaults to random
	CodeLength int    `json:"code_length"` // Number of characters per code
}

// GeneratorType constants
const (
	TypeRandom = "random"
)

// DefaultCodeLength is the length of generated codes
const DefaultCodeLength = 7

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Type:       TypeRandom,
		CodeLength: DefaultCodeLength,
	}
}
