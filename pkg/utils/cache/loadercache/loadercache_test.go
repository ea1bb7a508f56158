package loadercache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls map[string]int
}

func (c *countingLoader) load(_ context.Context, key string) (*string, error) {
	c.calls[key]++
	if key == "bad" {
		return nil, errors.New("not found")
	}
	v := "value-" + key
	return &v, nil
}

func TestGet(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cl := &countingLoader{calls: map[string]int{}}
	c := New(
		WithLoader[string, string](cl.load),
		WithExpiration[string, string](time.Minute),
		withClock[string, string](func() time.Time { return now }),
	)
	ctx := context.Background()

	v, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "value-a", *v)
	_, _ = c.Get(ctx, "a")
	assert.Equal(t, 1, cl.calls["a"])

	now = now.Add(2 * time.Minute)
	_, _ = c.Get(ctx, "a")
	assert.Equal(t, 2, cl.calls["a"], "expired entry is reloaded")

	c.Invalidate(ctx, "a")
	_, _ = c.Get(ctx, "a")
	assert.Equal(t, 3, cl.calls["a"])

	c.InvalidateAll(ctx)
	_, _ = c.Get(ctx, "a")
	assert.Equal(t, 4, cl.calls["a"])
}

func TestGetErrorsNotCached(t *testing.T) {
	cl := &countingLoader{calls: map[string]int{}}
	c := New(WithLoader[string, string](cl.load))

	_, err := c.Get(context.Background(), "bad")
	require.Error(t, err)
	_, err = c.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.Equal(t, 2, cl.calls["bad"])
}

func TestGetWithoutLoader(t *testing.T) {
	c := New[string, string]()
	_, err := c.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
