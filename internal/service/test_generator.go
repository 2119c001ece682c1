package service

import (
	"context"
	"fmt"
	"sync"
)

// TestGenerator is a deterministic generator for testing purposes. It replays
// the scripted codes first, then counts upwards.
type TestGenerator struct {
	mu      sync.Mutex
	script  []string
	counter int
}

// NewTestGenerator creates a new test generator returning script before counting
func NewTestGenerator(script ...string) *TestGenerator {
	return &TestGenerator{script: script}
}

// GenerateShortCode returns the next scripted or counted code
func (g *TestGenerator) GenerateShortCode(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.script) > 0 {
		code := g.script[0]
		g.script = g.script[1:]
		return code, nil
	}

	g.counter++
	return fmt.Sprintf("test%03d", g.counter), nil
}

// Type returns the generator type
func (g *TestGenerator) Type() string {
	return "test"
}
