package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan int) int {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return 0
	}
}

func TestFanOut(t *testing.T) {
	source := make(chan int)
	b := New("test", source, WithBufferSize[int](4))
	defer b.Close()

	s1 := b.Subscribe()
	s2 := b.Subscribe()
	source <- 1
	source <- 2

	assert.Equal(t, 1, receive(t, s1))
	assert.Equal(t, 2, receive(t, s1))
	assert.Equal(t, 1, receive(t, s2))
	assert.Equal(t, 2, receive(t, s2))
}

func TestCancelSubscription(t *testing.T) {
	source := make(chan int)
	b := New("test", source, WithBufferSize[int](1))
	defer b.Close()

	s1 := b.Subscribe()
	s2 := b.Subscribe()
	b.CancelSubscription(s1)
	_, ok := <-s1
	assert.False(t, ok, "cancelled subscription is closed")

	source <- 3
	assert.Equal(t, 3, receive(t, s2))
}

func TestSlowSubscriberIsSkipped(t *testing.T) {
	source := make(chan int)
	b := New("test", source, WithSendTimeout[int](10*time.Millisecond))
	defer b.Close()

	_ = b.Subscribe() // never read
	source <- 1
	source <- 2
	source <- 3 // accepted only after delivery of 2 timed out

	bs, ok := b.(*broadcastServer[int])
	require.True(t, ok)
	assert.GreaterOrEqual(t, bs.numSkip.Load(), int64(2))
	assert.Equal(t, int64(0), bs.numSnd.Load())
}

func TestCloseClosesListeners(t *testing.T) {
	source := make(chan int)
	b := New("test", source)
	s := b.Subscribe()
	b.Close()

	select {
	case _, ok := <-s:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("listener not closed")
	}
}
