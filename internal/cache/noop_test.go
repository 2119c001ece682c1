package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestURLKey(t *testing.T) {
	assert.Equal(t, "url:abc1234", URLKey("abc1234"))
	assert.Equal(t, "url:my-alias", URLKey("my-alias"))
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Noop{}

	c.Set(ctx, "url:a", "https://example.com", time.Hour)
	_, ok := c.Get(ctx, "url:a")
	assert.False(t, ok)
	c.Delete(ctx, "url:a")
	assert.ErrorIs(t, c.Ping(ctx), ErrDisabled)
	assert.NoError(t, c.Close())
}
