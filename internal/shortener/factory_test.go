package shortener

import (
	"testing"
)

func TestNewGenerator(t *testing.T) {
	testCases := []struct {
		name        string
		config      Config
		expectError bool
		wantType    string
	}{
		{
			name:     "default config",
			config:   DefaultConfig(),
			wantType: TypeRandom,
		},
		{
			name:     "empty type falls back to random",
			config:   Config{CodeLength: 9},
			wantType: TypeRandom,
		},
		{
			name:        "unknown type",
			config:      Config{Type: "counter", CodeLength: 7},
			expectError: true,
		},
		{
			name:        "zero length",
			config:      Config{Type: TypeRandom},
			expectError: true,
		},
		{
			name:        "negative length",
			config:      Config{Type: TypeRandom, CodeLength: -1},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			generator, err := NewGenerator(tc.config)

			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				if generator != nil {
					t.Errorf("Expected nil generator on error")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if generator.Type() != tc.wantType {
				t.Errorf("Expected generator type %s, got %s", tc.wantType, generator.Type())
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.CodeLength != 7 {
		t.Errorf("Expected default code length 7, got %d", config.CodeLength)
	}
	if config.Type != TypeRandom {
		t.Errorf("Expected default type %s, got %s", TypeRandom, config.Type)
	}
}
