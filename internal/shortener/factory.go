package shortener

import (
	"fmt"
)

// NewGenerator creates the generator selected by config
func NewGenerator(config Config) (Generator, error) {
	if config.CodeLength <= 0 {
		return nil, fmt.Errorf("code length must be positive, got: %d", config.CodeLength)
	}

	switch config.Type {
	case "", TypeRandom:
		return NewRandomGenerator(config.CodeLength), nil
	default:
		return nil, fmt.Errorf("unknown generator type: %s", config.Type)
	}
}
