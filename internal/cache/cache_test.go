package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_EmptyAddrDisablesCache(t *testing.T) {
	assert.Nil(t, New("", "", 0))
}

func TestNilClientIsAlwaysEmpty(t *testing.T) {
	var c *Client
	ctx := context.Background()

	c.SetJSON(ctx, BookKey(1), map[string]string{"title": "Dune"}, time.Minute)

	var dst map[string]string
	assert.False(t, c.GetJSON(ctx, BookKey(1), &dst))
	assert.Nil(t, dst)
	assert.NotPanics(t, func() { c.Delete(ctx, BookKey(1), UserKey(2)) })
	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestUnreachableServerReadsAsMiss(t *testing.T) {
	// nothing listens on port 1
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c.SetJSON(ctx, UserKey(5), map[string]int{"id": 5}, time.Minute)
	var dst map[string]int
	assert.False(t, c.GetJSON(ctx, UserKey(5), &dst))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "book:42", BookKey(42))
	assert.Equal(t, "user:7", UserKey(7))
}
